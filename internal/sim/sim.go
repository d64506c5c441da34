// Package sim is the tick-driven simulator driver: it consumes a
// deterministic workload stream and issues malloc/free calls into a free
// list under one placement policy, in the fixed phase order the spec
// requires (arrival, heap-lifetime sweep, I/O completion, I/O start, CPU
// dispatch, execute, metrics emission).
package sim

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coredump-labs/memplace/internal/config"
	"github.com/coredump-labs/memplace/internal/freelist"
	"github.com/coredump-labs/memplace/internal/metrics"
	"github.com/coredump-labs/memplace/internal/simlog"
	"github.com/coredump-labs/memplace/internal/units"
	"github.com/coredump-labs/memplace/internal/workload"
)

const (
	// TotalTime is the number of ticks one simulation run covers.
	TotalTime = 12000
	// PrefillTime marks the boundary between the warmup and steady-state
	// phases.
	PrefillTime = 2000
)

// EventSink receives the append-only stream of per-tick events a run
// produces. Implementations correspond to the event vocabulary in
// spec.md §6: ARRIVE, REJECTED, HEAP_ALLOC, HEAP_FREE, IO_REQUEST,
// IO_START, IO_DONE, DISPATCH, FINISH, plus the two phase banners.
type EventSink interface {
	Phase(tick int, label string)
	Arrive(tick, jobID int, jobType string, codeLoc, stackLoc int)
	Rejected(tick, jobID int)
	HeapAlloc(tick, jobID, loc, unitCount int)
	HeapFree(tick, jobID, loc, unitCount int)
	IORequest(tick, jobID int)
	IOStart(tick, jobID int)
	IODone(tick, jobID int)
	Dispatch(tick, jobID int)
	Finish(tick, jobID int)
}

// MetricsSink receives the periodic and prefill metrics blocks a run
// produces (spec.md §4.4 step 8).
type MetricsSink interface {
	Prefill(tick int, snap metrics.Snapshot)
	Periodic(tick int, snap metrics.Snapshot, requiredBytesSum int)
}

// Outcome is the final state of one policy's simulation run, enough for
// internal/report to derive every summary/efficiency/comparison field.
type Outcome struct {
	Policy            freelist.Policy
	Metrics           metrics.Snapshot
	MaxAllocatedUnits int
	AllocFailCount    int
	RequiredBytesSum  int
	Counters          freelist.Counters
	SmallJobs         int
	MediumJobs        int
	LargeJobs         int
}

// Driver owns the mutable state of one simulation run: the free list, the
// deterministic workload generator, and the job/queue bookkeeping.
type Driver struct {
	policy freelist.Policy
	params config.Params
	gen    *workload.Generator
	free   *freelist.List
	log    simlog.Logger
	tracer trace.Tracer
}

// New constructs a Driver for one policy run. The generator must be freshly
// seeded by the caller (see Run's doc) so that every policy observes the
// same request stream.
func New(policy freelist.Policy, params config.Params, gen *workload.Generator, log simlog.Logger, tracer trace.Tracer) *Driver {
	return &Driver{
		policy: policy,
		params: params,
		gen:    gen,
		free:   freelist.New(params.TotalUnits),
		log:    log.WithPolicy(policy.String()),
		tracer: tracer,
	}
}

// Run executes the full tick loop for this driver's policy, emitting
// events and metrics blocks as it goes, and returns the final Outcome.
//
// Determinism contract: callers reseed the RNG (construct a fresh
// workload.Generator with the same seed) before each policy's Run, so that
// FF/NF/BF/WF all see exactly the same arrival/job-type/heap-request
// stream (spec.md §4.3).
func (d *Driver) Run(ctx context.Context, events EventSink, msink MetricsSink) Outcome {
	_, span := d.tracer.Start(ctx, "sim.Run", trace.WithAttributes(
		attribute.String("policy", d.policy.String()),
		attribute.Int("total_units", d.params.TotalUnits),
		attribute.Int("unit_size", d.params.UnitSize),
	))
	defer span.End()

	var counters freelist.Counters
	unitSize := d.params.UnitSize

	var (
		allocatedUnits    int
		requiredBytesSum  int
		heapAllocCount    int
		heapBytesSum      int
		lostCount         int
		lostBytes         int
		maxAllocatedUnits int
		allocFailCount    int
		jobIDCounter      = 1
	)

	var readyQueue []*workload.Job
	var activeJobs []*workload.Job
	var currentJob *workload.Job

	var ioQueue []*workload.Job
	var ioJob *workload.Job
	ioIdle := true
	ioDoneTime := -1

	clampRequired := func() {
		if requiredBytesSum < 0 {
			requiredBytesSum = 0
		}
	}

	for simTime := 0; simTime < TotalTime; simTime++ {
		// 1. Phase-boundary log.
		if simTime == 0 {
			events.Phase(simTime, "Prefill Phase begins")
		}
		if simTime == PrefillTime {
			events.Phase(simTime, "Main Simulation Phase begins")
		}

		// 2. Arrival.
		if d.gen.ShouldArrive(simTime) {
			job := d.gen.NewJob(jobIDCounter, simTime)

			codeLoc := d.free.Malloc(d.policy, job.CodeBytes, unitSize, &counters)
			stackLoc := -1
			if codeLoc != -1 {
				stackLoc = d.free.Malloc(d.policy, job.StackBytes, unitSize, &counters)
			}

			if codeLoc != -1 && stackLoc != -1 {
				job.CodeLoc = codeLoc
				job.StackLoc = stackLoc

				codeUnits := units.FromBytes(job.CodeBytes, unitSize)
				stackUnits := units.FromBytes(job.StackBytes, unitSize)
				allocatedUnits += codeUnits + stackUnits
				requiredBytesSum += job.CodeBytes + job.StackBytes
				if allocatedUnits > maxAllocatedUnits {
					maxAllocatedUnits = allocatedUnits
				}

				events.Arrive(simTime, job.ID, job.Type.String(), codeLoc, stackLoc)

				jobPtr := &job
				readyQueue = append(readyQueue, jobPtr)
				activeJobs = append(activeJobs, jobPtr)
				jobIDCounter++
			} else {
				// spec.md §9 note 1: a code-succeeds/stack-fails partial
				// allocation is NOT rolled back here; preserved verbatim.
				allocFailCount++
				events.Rejected(simTime, jobIDCounter)
				// spec.md §9 note 2: job_id_counter is not incremented on
				// rejection, so a run of rejections reuses the same id.
			}
		}

		// 3. Heap-lifetime sweep.
		for _, job := range activeJobs {
			kept := job.HeapBlocks[:0]
			for _, blk := range job.HeapBlocks {
				if simTime >= blk.Death {
					if !job.IsLost {
						d.free.Free(blk.Loc, blk.Units, &counters)
						allocatedUnits -= blk.Units
						requiredBytesSum -= blk.Bytes
						clampRequired()
						events.HeapFree(simTime, job.ID, blk.Loc, blk.Units)
					} else {
						lostCount++
						lostBytes += blk.Bytes
					}
				} else {
					kept = append(kept, blk)
				}
			}
			job.HeapBlocks = kept
		}

		// 4. I/O completion.
		if !ioIdle && simTime >= ioDoneTime {
			readyQueue = append(readyQueue, ioJob)
			events.IODone(simTime, ioJob.ID)
			ioJob = nil
			ioIdle = true
		}

		// 5. I/O start.
		if ioIdle && len(ioQueue) > 0 {
			ioJob = ioQueue[0]
			ioQueue = ioQueue[1:]
			ioIdle = false
			ioDoneTime = simTime + d.gen.IODuration()
			events.IOStart(simTime, ioJob.ID)
		}

		// 6. CPU dispatch.
		if currentJob == nil && len(readyQueue) > 0 {
			currentJob = readyQueue[0]
			readyQueue = readyQueue[1:]
			events.Dispatch(simTime, currentJob.ID)
		}

		// 7. Execute one tick.
		if currentJob != nil {
			if currentJob.RunLeft > 1 {
				if d.gen.RollIORequest() {
					events.IORequest(simTime, currentJob.ID)
					ioQueue = append(ioQueue, currentJob)
					currentJob = nil
				} else {
					perTick := workload.HeapPerTick(currentJob.HeapTotal, currentJob.RunTotal)
					for k := 0; k < perTick; k++ {
						if currentJob.HeapLeft <= 0 {
							break
						}
						heapSize, lifetime := d.gen.HeapRequest(currentJob.RunLeft)
						death := simTime + lifetime

						loc := d.free.Malloc(d.policy, heapSize, unitSize, &counters)
						if loc != -1 {
							u := units.FromBytes(heapSize, unitSize)
							currentJob.HeapBlocks = append(currentJob.HeapBlocks, workload.HeapBlock{
								Loc: loc, Units: u, Death: death, Bytes: heapSize,
							})
							allocatedUnits += u
							requiredBytesSum += heapSize
							heapAllocCount++
							heapBytesSum += heapSize
							if allocatedUnits > maxAllocatedUnits {
								maxAllocatedUnits = allocatedUnits
							}
							events.HeapAlloc(simTime, currentJob.ID, loc, u)
							currentJob.HeapLeft--
						} else {
							allocFailCount++
						}
					}
					currentJob.RunLeft--
				}
			} else {
				currentJob.RunLeft--
			}

			if currentJob != nil && currentJob.RunLeft <= 0 {
				codeUnits := units.FromBytes(currentJob.CodeBytes, unitSize)
				stackUnits := units.FromBytes(currentJob.StackBytes, unitSize)

				d.free.Free(currentJob.StackLoc, stackUnits, &counters)
				d.free.Free(currentJob.CodeLoc, codeUnits, &counters)
				allocatedUnits -= codeUnits + stackUnits
				requiredBytesSum -= currentJob.CodeBytes + currentJob.StackBytes
				clampRequired()

				if !currentJob.IsLost {
					for _, blk := range currentJob.HeapBlocks {
						d.free.Free(blk.Loc, blk.Units, &counters)
						allocatedUnits -= blk.Units
						requiredBytesSum -= blk.Bytes
						clampRequired()
						events.HeapFree(simTime, currentJob.ID, blk.Loc, blk.Units)
					}
				} else {
					for _, blk := range currentJob.HeapBlocks {
						lostCount++
						lostBytes += blk.Bytes
					}
				}

				events.Finish(simTime, currentJob.ID)

				finishedID := currentJob.ID
				currentJob = nil

				newActive := activeJobs[:0]
				for _, j := range activeJobs {
					if j.ID != finishedID {
						newActive = append(newActive, j)
					}
				}
				activeJobs = newActive
			}
		}

		// 8. Metrics emission.
		if simTime == PrefillTime {
			msink.Prefill(simTime, metrics.Compute(metrics.Input{
				TotalUnits: d.params.TotalUnits, UnitSize: unitSize,
				AllocatedUnits: allocatedUnits, RequiredBytesSum: requiredBytesSum,
				FreeRuns: d.free.Runs(), HeapAllocCount: heapAllocCount,
				HeapBytesSum: heapBytesSum, LostCount: lostCount, LostBytes: lostBytes,
				MaxAllocatedUnits: maxAllocatedUnits,
			}))
		}
		if simTime >= PrefillTime && simTime%20 == 0 {
			msink.Periodic(simTime, metrics.Compute(metrics.Input{
				TotalUnits: d.params.TotalUnits, UnitSize: unitSize,
				AllocatedUnits: allocatedUnits, RequiredBytesSum: requiredBytesSum,
				FreeRuns: d.free.Runs(), HeapAllocCount: heapAllocCount,
				HeapBytesSum: heapBytesSum, LostCount: lostCount, LostBytes: lostBytes,
				MaxAllocatedUnits: maxAllocatedUnits,
			}), requiredBytesSum)
		}
	}

	final := metrics.Compute(metrics.Input{
		TotalUnits: d.params.TotalUnits, UnitSize: unitSize,
		AllocatedUnits: allocatedUnits, RequiredBytesSum: requiredBytesSum,
		FreeRuns: d.free.Runs(), HeapAllocCount: heapAllocCount,
		HeapBytesSum: heapBytesSum, LostCount: lostCount, LostBytes: lostBytes,
		MaxAllocatedUnits: maxAllocatedUnits,
	})

	d.log.Info().Int("alloc_calls", counters.AllocCalls).Int("alloc_fail", counters.AllocFail).
		Msg("simulation complete")

	return Outcome{
		Policy:            d.policy,
		Metrics:           final,
		MaxAllocatedUnits: maxAllocatedUnits,
		AllocFailCount:    allocFailCount,
		RequiredBytesSum:  requiredBytesSum,
		Counters:          counters,
		SmallJobs:         d.gen.TypeCount(workload.Small),
		MediumJobs:        d.gen.TypeCount(workload.Medium),
		LargeJobs:         d.gen.TypeCount(workload.Large),
	}
}
