package sim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coredump-labs/memplace/internal/config"
	"github.com/coredump-labs/memplace/internal/freelist"
	"github.com/coredump-labs/memplace/internal/metrics"
	"github.com/coredump-labs/memplace/internal/simlog"
	"github.com/coredump-labs/memplace/internal/sim"
	"github.com/coredump-labs/memplace/internal/workload"
)

type recordingSink struct {
	events []string
}

func (r *recordingSink) Phase(tick int, label string) { r.events = append(r.events, label) }
func (r *recordingSink) Arrive(tick, jobID int, jobType string, codeLoc, stackLoc int) {
	r.events = append(r.events, "ARRIVE")
}
func (r *recordingSink) Rejected(tick, jobID int)                       { r.events = append(r.events, "REJECTED") }
func (r *recordingSink) HeapAlloc(tick, jobID, loc, unitCount int)      { r.events = append(r.events, "HEAP_ALLOC") }
func (r *recordingSink) HeapFree(tick, jobID, loc, unitCount int)       { r.events = append(r.events, "HEAP_FREE") }
func (r *recordingSink) IORequest(tick, jobID int)                      { r.events = append(r.events, "IO_REQUEST") }
func (r *recordingSink) IOStart(tick, jobID int)                        { r.events = append(r.events, "IO_START") }
func (r *recordingSink) IODone(tick, jobID int)                         { r.events = append(r.events, "IO_DONE") }
func (r *recordingSink) Dispatch(tick, jobID int)                       { r.events = append(r.events, "DISPATCH") }
func (r *recordingSink) Finish(tick, jobID int)                         { r.events = append(r.events, "FINISH") }

type recordingMetrics struct {
	prefill   []metrics.Snapshot
	periodics []metrics.Snapshot
}

func (r *recordingMetrics) Prefill(tick int, snap metrics.Snapshot) {
	r.prefill = append(r.prefill, snap)
}
func (r *recordingMetrics) Periodic(tick int, snap metrics.Snapshot, requiredBytesSum int) {
	r.periodics = append(r.periodics, snap)
}

func testParams() config.Params {
	return config.Params{
		Percentages: workload.Percentages{Small: 60, Medium: 30, Large: 10},
		UnitSize:    8,
		TotalUnits:  4000,
		LostMode:    false,
	}
}

func runPolicy(t *testing.T, policy freelist.Policy, seed int64, p config.Params) (sim.Outcome, *recordingSink) {
	t.Helper()
	gen := workload.NewGenerator(seed, p.Percentages, p.LostMode)
	d := sim.New(policy, p, gen, simlog.Nop(), noop.NewTracerProvider().Tracer("test"))
	events := &recordingSink{}
	msink := &recordingMetrics{}
	outcome := d.Run(context.Background(), events, msink)
	assert.NotEmpty(t, msink.prefill)
	assert.NotEmpty(t, msink.periodics)
	return outcome, events
}

func TestRunProducesDeterministicOutcome(t *testing.T) {
	p := testParams()
	o1, _ := runPolicy(t, freelist.FirstFit, 10, p)
	o2, _ := runPolicy(t, freelist.FirstFit, 10, p)

	assert.Equal(t, o1.Counters, o2.Counters)
	assert.Equal(t, o1.Metrics.HeapAllocCount, o2.Metrics.HeapAllocCount)
	assert.Equal(t, o1.Metrics.LostCount, o2.Metrics.LostCount)
}

func TestInvariantsHoldAcrossAllPolicies(t *testing.T) {
	p := testParams()
	policies := []freelist.Policy{freelist.FirstFit, freelist.NextFit, freelist.BestFit, freelist.WorstFit}
	for _, policy := range policies {
		t.Run(policy.String(), func(t *testing.T) {
			o, _ := runPolicy(t, policy, 10, p)

			// spec.md §8 invariant 3.
			assert.GreaterOrEqual(t, o.MaxAllocatedUnits, 0)
			// spec.md §8 invariant 5.
			assert.LessOrEqual(t, o.Counters.AllocFail, o.Counters.AllocCalls)
			assert.LessOrEqual(t, o.Metrics.UsedBytes/p.UnitSize, p.TotalUnits)
		})
	}
}

func TestFreeListUnitConservationInvariant(t *testing.T) {
	p := testParams()
	gen := workload.NewGenerator(10, p.Percentages, p.LostMode)
	d := sim.New(freelist.FirstFit, p, gen, simlog.Nop(), noop.NewTracerProvider().Tracer("test"))
	o := d.Run(context.Background(), &recordingSink{}, &recordingMetrics{})

	usedUnits := o.Metrics.UsedBytes / p.UnitSize
	freeUnits := p.TotalUnits - usedUnits
	assert.Equal(t, p.TotalUnits, usedUnits+freeUnits)
	require.GreaterOrEqual(t, freeUnits, 0)
}

func TestRejectionQuirkPreserved(t *testing.T) {
	// A tiny unit space forces rejections: with 4 units of 8 bytes, every
	// generated code segment (at least 40 bytes) fails to fit, so every
	// arrival is rejected. The code-succeeds/stack-fails path is not reached
	// here.
	p := testParams()
	p.TotalUnits = 4
	o, events := runPolicy(t, freelist.FirstFit, 10, p)
	assert.Greater(t, o.AllocFailCount, 0)

	found := false
	for _, e := range events.events {
		if e == "REJECTED" {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestLostObjectsCountedAndNotFreed(t *testing.T) {
	p := testParams()
	p.LostMode = true
	o, _ := runPolicy(t, freelist.FirstFit, 10, p)
	assert.GreaterOrEqual(t, o.Metrics.LostCount, 0)
}
