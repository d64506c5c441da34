// Package workload generates the synthetic job stream the simulator drives
// against the free list: arrivals, job types, and per-tick heap allocation
// requests, all derived from a single deterministic RNG stream.
package workload

import "math/rand"

// Type classifies a job by its size tier.
type Type int

const (
	Small Type = iota
	Medium
	Large
)

func (t Type) String() string {
	switch t {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return "?"
	}
}

// HeapBlock is one outstanding heap allocation owned by a job.
type HeapBlock struct {
	Loc   int
	Units int
	Death int
	Bytes int
}

// Job is one occupant of the simulated system, from arrival to completion.
type Job struct {
	ID         int
	Type       Type
	RunTotal   int
	RunLeft    int
	CodeBytes  int
	StackBytes int
	HeapTotal  int
	HeapLeft   int
	StartTime  int
	CodeLoc    int
	StackLoc   int
	HeapBlocks []HeapBlock
	IsLost     bool
}

// HeapPerTick is the number of heap allocation attempts a job makes per
// executing tick: a pure function of its total heap demand and lifetime.
func HeapPerTick(heapTotal, runTotal int) int {
	if runTotal <= 0 {
		return 0
	}
	perTick := heapTotal / runTotal
	if perTick <= 0 {
		perTick = 1
	}
	return perTick
}

// Percentages is the small/medium/large job-type mix, each 0-100, summing
// to 100.
type Percentages struct {
	Small  int
	Medium int
	Large  int
}

// Generator produces the deterministic job/heap-allocation stream for one
// simulation run. It owns the single RNG stream shared by arrival timing,
// job-type sampling, and heap-block sizing/lifetime, so that re-seeding it
// identically before each policy's run reproduces the same request
// sequence regardless of placement policy.
type Generator struct {
	rng  *rand.Rand
	pcts Percentages

	lostMode bool
	typeCounts [3]int

	baseArrival int
	nextArrival int
}

// NewGenerator constructs a generator seeded deterministically. Re-seed
// (construct a fresh Generator) with the same seed before each policy run.
func NewGenerator(seed int64, pcts Percentages, lostMode bool) *Generator {
	g := &Generator{
		rng:         rand.New(rand.NewSource(seed)),
		pcts:        pcts,
		lostMode:    lostMode,
		baseArrival: 1,
	}
	g.nextArrival = g.baseArrival + g.rng.Intn(5)
	return g
}

// intRange returns a uniform int in [lo, hi] inclusive, matching Python's
// random.randint(lo, hi).
func (g *Generator) intRange(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// ShouldArrive reports whether an arrival fires at simTime, and if so
// advances the internal arrival schedule (mean inter-arrival ~3, jitter
// +/-2) for the next one.
func (g *Generator) ShouldArrive(simTime int) bool {
	if simTime < g.nextArrival {
		return false
	}
	g.baseArrival += 3
	g.nextArrival = g.baseArrival + g.rng.Intn(5)
	return true
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// NewJob samples a job type and its size/timing parameters, tagging it lost
// if lost-object mode is enabled and this is the Nth job of its type.
func (g *Generator) NewJob(id, startTime int) Job {
	r := g.intRange(1, 100)
	var (
		jtype                       Type
		runTime, codeSize, stackSz, heapTotal int
	)
	switch {
	case r <= g.pcts.Small:
		jtype = Small
		runTime = max1(5 + g.intRange(-1, 1))
		codeSize = max1(60 + g.intRange(-20, 20))
		stackSz = max1(30 + g.intRange(-10, 10))
		heapTotal = runTime * 50
	case r <= g.pcts.Small+g.pcts.Medium:
		jtype = Medium
		runTime = max1(10 + g.intRange(-1, 1))
		codeSize = max1(90 + g.intRange(-30, 30))
		stackSz = max1(60 + g.intRange(-20, 20))
		heapTotal = runTime * 100
	default:
		jtype = Large
		runTime = max1(25 + g.intRange(-1, 1))
		codeSize = max1(170 + g.intRange(-50, 50))
		stackSz = max1(90 + g.intRange(-30, 30))
		heapTotal = runTime * 250
	}

	g.typeCounts[jtype]++
	isLost := g.lostMode && g.typeCounts[jtype]%100 == 0

	return Job{
		ID:         id,
		Type:       jtype,
		RunTotal:   runTime,
		RunLeft:    runTime,
		CodeBytes:  codeSize,
		StackBytes: stackSz,
		HeapTotal:  heapTotal,
		HeapLeft:   heapTotal,
		StartTime:  startTime,
		CodeLoc:    -1,
		StackLoc:   -1,
		IsLost:     isLost,
	}
}

// TypeCount returns the running arrival count for a job type, used for
// reporting per-type job counts.
func (g *Generator) TypeCount(t Type) int {
	return g.typeCounts[t]
}

// HeapRequest samples one heap allocation's byte size and lifetime, given
// the job's remaining run time.
func (g *Generator) HeapRequest(runLeft int) (bytes, lifetime int) {
	bytes = max1(35 + g.intRange(-15, 15))
	if runLeft > 0 {
		lifetime = g.intRange(1, runLeft)
	} else {
		lifetime = 1
	}
	return
}

// IODuration samples how long a simulated I/O operation takes.
func (g *Generator) IODuration() int {
	return g.intRange(1, 3)
}

// RollIORequest reports whether the current tick sends a job to I/O instead
// of executing (5% chance).
func (g *Generator) RollIORequest() bool {
	return g.rng.Float64() < 0.05
}
