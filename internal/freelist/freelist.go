// Package freelist implements the four contiguous-memory placement
// policies (first fit, next fit, best fit, worst fit) over a linear unit
// address space, plus coalescing release.
package freelist

import (
	"golang.org/x/exp/slices"

	"github.com/coredump-labs/memplace/internal/units"
)

// Run is a maximal contiguous range of free units.
type Run struct {
	Start  int
	Length int
}

// Counters is the mutable bag of allocator call/probe/failure statistics
// shared across a single simulation run.
type Counters struct {
	AllocCalls int
	AllocFail  int
	FreeCalls  int
	OpsMalloc  int
	OpsFree    int
}

// Policy selects a placement strategy.
type Policy int

const (
	FirstFit Policy = iota
	NextFit
	BestFit
	WorstFit
)

func (p Policy) String() string {
	switch p {
	case FirstFit:
		return "FF"
	case NextFit:
		return "NF"
	case BestFit:
		return "BF"
	case WorstFit:
		return "WF"
	default:
		return "?"
	}
}

// List is the free-list state for one simulation run: an ordered,
// disjoint, non-adjacent sequence of runs over [0, totalUnits).
type List struct {
	runs         []Run
	nextFitIndex int
}

// New returns a list initialized to a single free run spanning totalUnits.
func New(totalUnits int) *List {
	return &List{runs: []Run{{Start: 0, Length: totalUnits}}}
}

// Runs returns a snapshot of the current free runs.
func (l *List) Runs() []Run {
	out := make([]Run, len(l.runs))
	copy(out, l.runs)
	return out
}

// Malloc dispatches to the requested placement policy.
func (l *List) Malloc(policy Policy, bytesNeeded, unitSize int, c *Counters) int {
	switch policy {
	case FirstFit:
		return l.MallocFirstFit(bytesNeeded, unitSize, c)
	case NextFit:
		return l.MallocNextFit(bytesNeeded, unitSize, c)
	case BestFit:
		return l.MallocBestFit(bytesNeeded, unitSize, c)
	case WorstFit:
		return l.MallocWorstFit(bytesNeeded, unitSize, c)
	default:
		return -1
	}
}

// place replaces or removes the run at index i, reserving n units from its
// front, and returns the allocation start.
func (l *List) place(i, n int) int {
	r := l.runs[i]
	start := r.Start
	leftover := r.Length - n
	if leftover > 0 {
		l.runs[i] = Run{Start: start + n, Length: leftover}
	} else {
		l.runs = append(l.runs[:i], l.runs[i+1:]...)
	}
	return start
}

// MallocFirstFit picks the first run with length >= n, left to right.
func (l *List) MallocFirstFit(bytesNeeded, unitSize int, c *Counters) int {
	n := units.FromBytes(bytesNeeded, unitSize)
	if n == 0 {
		return -1
	}
	c.AllocCalls++

	for i := range l.runs {
		c.OpsMalloc++
		if l.runs[i].Length >= n {
			return l.place(i, n)
		}
	}
	c.AllocFail++
	return -1
}

// MallocNextFit scans at most len(runs) positions starting at the cursor,
// wrapping around. When the chosen run is split, the cursor moves to it;
// when the chosen run is consumed whole, the cursor keeps its starting
// position (moved down by one if the removed run lay before it); on
// failure the cursor is unchanged.
func (l *List) MallocNextFit(bytesNeeded, unitSize int, c *Counters) int {
	n := units.FromBytes(bytesNeeded, unitSize)
	if n == 0 {
		return -1
	}
	c.AllocCalls++

	count := len(l.runs)
	if count == 0 {
		c.AllocFail++
		return -1
	}
	// Guard against a cursor left dangling by a prior removal that shrank
	// the list past where it pointed (spec.md §9 note 3).
	l.nextFitIndex %= count

	last := l.nextFitIndex
	for j := 0; j < count; j++ {
		i := (last + j) % count
		c.OpsMalloc++
		if l.runs[i].Length >= n {
			leftover := l.runs[i].Length - n
			start := l.runs[i].Start
			if leftover > 0 {
				l.runs[i] = Run{Start: start + n, Length: leftover}
				l.nextFitIndex = i
			} else {
				l.runs = append(l.runs[:i], l.runs[i+1:]...)
				if i < last && last > 0 {
					last--
				}
				l.nextFitIndex = last
			}
			return start
		}
	}
	c.AllocFail++
	return -1
}

// MallocBestFit picks the smallest fitting run; ties favor the earliest.
func (l *List) MallocBestFit(bytesNeeded, unitSize int, c *Counters) int {
	n := units.FromBytes(bytesNeeded, unitSize)
	if n == 0 {
		return -1
	}
	c.AllocCalls++

	bestIndex := -1
	bestSize := -1
	for i := range l.runs {
		c.OpsMalloc++
		length := l.runs[i].Length
		if length >= n && (bestIndex == -1 || length < bestSize) {
			bestSize = length
			bestIndex = i
		}
	}
	if bestIndex == -1 {
		c.AllocFail++
		return -1
	}
	return l.place(bestIndex, n)
}

// MallocWorstFit picks the largest fitting run; ties favor the earliest.
func (l *List) MallocWorstFit(bytesNeeded, unitSize int, c *Counters) int {
	n := units.FromBytes(bytesNeeded, unitSize)
	if n == 0 {
		return -1
	}
	c.AllocCalls++

	worstIndex := -1
	worstSize := -1
	for i := range l.runs {
		c.OpsMalloc++
		length := l.runs[i].Length
		if length >= n && length > worstSize {
			worstSize = length
			worstIndex = i
		}
	}
	if worstIndex == -1 {
		c.AllocFail++
		return -1
	}
	return l.place(worstIndex, n)
}

// Free releases a block back to the list and coalesces adjacent runs.
// A negative start or non-positive unit count is silently ignored and
// does not count as a call.
func (l *List) Free(start, unitCount int, c *Counters) {
	if start < 0 || unitCount <= 0 {
		return
	}
	c.FreeCalls++

	l.runs = append(l.runs, Run{Start: start, Length: unitCount})
	slices.SortFunc(l.runs, func(a, b Run) int { return a.Start - b.Start })

	merged := l.runs[:0:0]
	for _, blk := range l.runs {
		c.OpsFree++
		if len(merged) == 0 {
			merged = append(merged, blk)
			continue
		}
		tail := &merged[len(merged)-1]
		if tail.Start+tail.Length == blk.Start {
			tail.Length += blk.Length
		} else {
			merged = append(merged, blk)
		}
	}
	l.runs = merged
}
