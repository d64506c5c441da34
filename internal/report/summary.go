package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/coredump-labs/memplace/internal/config"
	"github.com/coredump-labs/memplace/internal/freelist"
	"github.com/coredump-labs/memplace/internal/metrics"
)

// Summary writes the per-policy summary file: header block, prefill block,
// periodic blocks, and the final/extra/efficiency blocks at the end of a
// run (spec.md §6, text layout per original_source/Program2.py).
type Summary struct {
	w *bufio.Writer
}

// NewSummary wraps w in a buffered writer.
func NewSummary(w io.Writer) *Summary {
	return &Summary{w: bufio.NewWriter(w)}
}

// Close flushes any buffered output.
func (s *Summary) Close() error {
	return s.w.Flush()
}

// Header writes the run configuration block.
func (s *Summary) Header(p config.Params, policy freelist.Policy) {
	lostMode := "n"
	if p.LostMode {
		lostMode = "y"
	}
	fmt.Fprintf(s.w, "Test name: %s\n", p.TestName)
	fmt.Fprintf(s.w, "Algorithm: %s\n", policy)
	fmt.Fprintf(s.w, "Small %%: %d\n", p.Percentages.Small)
	fmt.Fprintf(s.w, "Medium %%: %d\n", p.Percentages.Medium)
	fmt.Fprintf(s.w, "Large %%: %d\n", p.Percentages.Large)
	fmt.Fprintf(s.w, "Memory unit size: %d\n", p.UnitSize)
	fmt.Fprintf(s.w, "Total units: %d\n", p.TotalUnits)
	fmt.Fprintf(s.w, "Lost objects mode: %s\n\n", lostMode)
}

// Prefill writes the tick-2000 steady-state metrics block.
func (s *Summary) Prefill(tick int, m metrics.Snapshot) {
	fmt.Fprintf(s.w, " PREFILL STEADY STATE METRICS (time %d)\n", tick)
	fmt.Fprintf(s.w, "%% memory in use: %.2f\n", m.MemUsedPercent)
	fmt.Fprintf(s.w, "%% memory free: %.2f\n", m.MemFreePercent)
	fmt.Fprintf(s.w, "internal frag bytes: %d\n", m.InternalFragBytes)
	fmt.Fprintf(s.w, "%% internal frag: %.2f\n", m.InternalFragPercent)
	fmt.Fprintf(s.w, "external frag (free areas): %d\n", m.NumFreeAreas)
	fmt.Fprintf(s.w, "largest free block (units): %d\n", m.LargestFree)
	fmt.Fprintf(s.w, "smallest free block (units): %d\n", m.SmallestFree)
	fmt.Fprintf(s.w, "avg free block size (units): %.2f\n", m.AvgFreeSize)
	fmt.Fprintf(s.w, "heap allocations so far: %d\n", m.HeapAllocCount)
	fmt.Fprintf(s.w, "lost objects so far: %d\n", m.LostCount)
	fmt.Fprintf(s.w, "%% memory of lost objects: %.2f\n\n", m.LostPercent)
}

// Periodic writes a time-stamped metrics block emitted every 20 ticks from
// PrefillTime onward.
func (s *Summary) Periodic(tick int, m metrics.Snapshot, requiredBytesSum int) {
	fmt.Fprintf(s.w, "time %d:\n", tick)
	fmt.Fprintf(s.w, "  total memory bytes: %d\n", m.TotalBytes)
	fmt.Fprintf(s.w, "  used bytes: %d\n", m.UsedBytes)
	fmt.Fprintf(s.w, "  free bytes: %d\n", m.FreeBytes)
	fmt.Fprintf(s.w, "  %% memory in use: %.2f\n", m.MemUsedPercent)
	fmt.Fprintf(s.w, "  %% memory free: %.2f\n", m.MemFreePercent)
	fmt.Fprintf(s.w, "  required bytes: %d\n", requiredBytesSum)
	fmt.Fprintf(s.w, "  internal frag bytes: %d\n", m.InternalFragBytes)
	fmt.Fprintf(s.w, "  %% internal frag: %.2f\n", m.InternalFragPercent)
	fmt.Fprintf(s.w, "  external frag (free areas): %d\n", m.NumFreeAreas)
	fmt.Fprintf(s.w, "  largest free block (units): %d\n", m.LargestFree)
	fmt.Fprintf(s.w, "  smallest free block (units): %d\n", m.SmallestFree)
	fmt.Fprintf(s.w, "  avg free block size (units): %.2f\n", m.AvgFreeSize)
	fmt.Fprintf(s.w, "  heap allocations: %d\n", m.HeapAllocCount)
	fmt.Fprintf(s.w, "  total heap bytes: %d\n", m.HeapBytesSum)
	fmt.Fprintf(s.w, "  lost objects: %d\n", m.LostCount)
	fmt.Fprintf(s.w, "  lost bytes: %d\n", m.LostBytes)
	fmt.Fprintf(s.w, "  %% memory of lost objects: %.2f\n\n", m.LostPercent)
}

// Final writes the final/extra/efficiency metrics blocks at the end of a
// run.
func (s *Summary) Final(r Result) {
	m := r.Metrics
	fmt.Fprintf(s.w, "\n FINAL METRICS\n")
	fmt.Fprintf(s.w, "Total memory bytes: %d\n", m.TotalBytes)
	fmt.Fprintf(s.w, "Max allocated units: %d\n", r.MaxAllocatedUnits)
	fmt.Fprintf(s.w, "Allocation failures: %d\n", r.AllocFailures)
	fmt.Fprintf(s.w, "%% memory in use: %.2f\n", m.MemUsedPercent)
	fmt.Fprintf(s.w, "%% memory free: %.2f\n", m.MemFreePercent)
	fmt.Fprintf(s.w, "Required bytes total (current): %d\n", r.RequiredBytes)
	fmt.Fprintf(s.w, "Internal frag bytes: %d\n", m.InternalFragBytes)
	fmt.Fprintf(s.w, "%% internal frag: %.2f\n", m.InternalFragPercent)
	fmt.Fprintf(s.w, "External frag free areas: %d\n", m.NumFreeAreas)
	fmt.Fprintf(s.w, "Largest free block (units): %d\n", m.LargestFree)
	fmt.Fprintf(s.w, "Smallest free block (units): %d\n", m.SmallestFree)
	fmt.Fprintf(s.w, "Avg free block size (units): %.2f\n", m.AvgFreeSize)
	fmt.Fprintf(s.w, "Heap allocations: %d\n", r.HeapAllocations)
	fmt.Fprintf(s.w, "Total heap bytes: %d\n", r.HeapBytes)
	fmt.Fprintf(s.w, "Lost objects: %d\n", r.LostObjects)
	fmt.Fprintf(s.w, "Lost bytes: %d\n", r.LostBytes)
	fmt.Fprintf(s.w, "%% memory of lost objects: %.2f\n\n", m.LostPercent)

	fmt.Fprintf(s.w, " EXTRA MEMORY METRICS\n")
	fmt.Fprintf(s.w, "Max allocated units at any time: %d\n", r.MaxAllocatedUnits)
	fmt.Fprintf(s.w, "Peak %% memory in use: %.2f\n", m.PeakUsedPercent)
	fmt.Fprintf(s.w, "Average free block size (final): %.2f\n", m.AvgFreeSize)
	fmt.Fprintf(s.w, "Total allocation failures: %d\n\n", r.AllocFailures)

	fmt.Fprintf(s.w, " EFFICIENCY METRICS\n")
	fmt.Fprintf(s.w, "Number of allocation calls: %d\n", r.AllocCalls)
	fmt.Fprintf(s.w, "Number of free calls: %d\n", r.FreeCalls)
	fmt.Fprintf(s.w, "Malloc operations: %d\n", r.OpsMalloc)
	fmt.Fprintf(s.w, "Free operations: %d\n", r.OpsFree)
	fmt.Fprintf(s.w, "Average operations per allocation: %.2f\n", r.AvgOpsAlloc)
	fmt.Fprintf(s.w, "Average operations per free: %.2f\n", r.AvgOpsFree)
	fmt.Fprintf(s.w, "Total allocation+free operations: %d\n", r.OpsMalloc+r.OpsFree)
}
