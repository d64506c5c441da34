package report

import (
	"github.com/coredump-labs/memplace/internal/metrics"
	"github.com/coredump-labs/memplace/internal/sim"
)

// Result is the per-policy outcome record handed to the comparison table
// and the master summary appender. It mirrors every field the original
// tool's result_summary dict tracked (spec.md §11 supplemented feature),
// not just the subset that ends up as a master-summary column.
type Result struct {
	Policy string

	SmallJobs  int
	MediumJobs int
	LargeJobs  int

	Metrics metrics.Snapshot

	RequiredBytes     int
	MaxAllocatedUnits int
	AllocFailures     int

	HeapAllocations int
	HeapBytes       int
	LostObjects     int
	LostBytes       int

	AllocCalls  int
	OpsMalloc   int
	AvgOpsAlloc float64
	FreeCalls   int
	OpsFree     int
	AvgOpsFree  float64
}

// FromOutcome derives the full Result record from a completed sim.Outcome.
func FromOutcome(o sim.Outcome) Result {
	var avgOpsAlloc, avgOpsFree float64
	if o.Counters.AllocCalls > 0 {
		avgOpsAlloc = float64(o.Counters.OpsMalloc) / float64(o.Counters.AllocCalls)
	}
	if o.Counters.FreeCalls > 0 {
		avgOpsFree = float64(o.Counters.OpsFree) / float64(o.Counters.FreeCalls)
	}

	return Result{
		Policy:            o.Policy.String(),
		SmallJobs:         o.SmallJobs,
		MediumJobs:        o.MediumJobs,
		LargeJobs:         o.LargeJobs,
		Metrics:           o.Metrics,
		RequiredBytes:     o.RequiredBytesSum,
		MaxAllocatedUnits: o.MaxAllocatedUnits,
		AllocFailures:     o.AllocFailCount,
		HeapAllocations:   o.Metrics.HeapAllocCount,
		HeapBytes:         o.Metrics.HeapBytesSum,
		LostObjects:       o.Metrics.LostCount,
		LostBytes:         o.Metrics.LostBytes,
		AllocCalls:        o.Counters.AllocCalls,
		OpsMalloc:         o.Counters.OpsMalloc,
		AvgOpsAlloc:       avgOpsAlloc,
		FreeCalls:         o.Counters.FreeCalls,
		OpsFree:           o.Counters.OpsFree,
		AvgOpsFree:        avgOpsFree,
	}
}
