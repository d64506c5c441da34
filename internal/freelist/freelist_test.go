package freelist_test

import (
	"testing"

	"github.com/coredump-labs/memplace/internal/freelist"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioPolicyDivergence(t *testing.T) {
	// spec.md §8 scenario 1.
	build := func() *freelist.List {
		l := freelist.New(10)
		var c freelist.Counters
		require.Equal(t, 0, l.MallocFirstFit(16, 8, &c))
		require.Equal(t, 2, l.MallocFirstFit(16, 8, &c))
		l.Free(0, 2, &c)
		return l
	}

	t.Run("FF", func(t *testing.T) {
		l := build()
		var c freelist.Counters
		assert.Equal(t, 0, l.MallocFirstFit(16, 8, &c))
	})
	t.Run("BF", func(t *testing.T) {
		l := build()
		var c freelist.Counters
		assert.Equal(t, 0, l.MallocBestFit(16, 8, &c))
	})
	t.Run("WF", func(t *testing.T) {
		l := build()
		var c freelist.Counters
		// free runs after setup: (0,2) and (4,6); worst fit picks the 6-unit tail.
		assert.Equal(t, 4, l.MallocWorstFit(16, 8, &c))
	})
}

func TestCoalescingOutOfOrderReleases(t *testing.T) {
	// spec.md §8 scenario 2.
	l := freelist.New(10)
	var c freelist.Counters
	require.Equal(t, 0, l.MallocFirstFit(16, 8, &c)) // (0,2)
	require.Equal(t, 2, l.MallocFirstFit(16, 8, &c)) // (2,2)
	require.Equal(t, 4, l.MallocFirstFit(16, 8, &c)) // (4,2)
	require.Equal(t, 6, l.MallocFirstFit(16, 8, &c)) // (6,2)
	require.Equal(t, 8, l.MallocFirstFit(16, 8, &c)) // (8,2)
	// free list is now empty; release blocks out of order to reach
	// [(0,2),(4,2),(8,2)], then fill the two gaps.
	l.Free(8, 2, &c)
	l.Free(0, 2, &c)
	l.Free(4, 2, &c)
	l.Free(2, 2, &c)
	want := []freelist.Run{{Start: 0, Length: 6}, {Start: 8, Length: 2}}
	if diff := cmp.Diff(want, l.Runs()); diff != "" {
		t.Fatalf("unexpected runs (-want +got):\n%s", diff)
	}

	l.Free(6, 2, &c)
	want = []freelist.Run{{Start: 0, Length: 10}}
	if diff := cmp.Diff(want, l.Runs()); diff != "" {
		t.Fatalf("unexpected runs (-want +got):\n%s", diff)
	}
}

func TestFreeIgnoresDegenerateRequests(t *testing.T) {
	l := freelist.New(4)
	var c freelist.Counters
	l.Free(-1, 2, &c)
	l.Free(1, 0, &c)
	assert.Equal(t, 0, c.FreeCalls)
	assert.Equal(t, []freelist.Run{{Start: 0, Length: 4}}, l.Runs())
}

func TestZeroByteRequestDoesNotCountAsCall(t *testing.T) {
	l := freelist.New(4)
	var c freelist.Counters
	assert.Equal(t, -1, l.MallocFirstFit(0, 8, &c))
	assert.Equal(t, 0, c.AllocCalls)
}

func TestAllocationFailureIncrementsCounters(t *testing.T) {
	l := freelist.New(1)
	var c freelist.Counters
	assert.Equal(t, -1, l.MallocFirstFit(100, 8, &c))
	assert.Equal(t, 1, c.AllocCalls)
	assert.Equal(t, 1, c.AllocFail)
}

func TestNextFitMatchesFirstFitFromZero(t *testing.T) {
	l1 := freelist.New(10)
	l2 := freelist.New(10)
	var c1, c2 freelist.Counters
	for _, b := range []int{16, 16, 16} {
		a := l1.MallocFirstFit(b, 8, &c1)
		bStart := l2.MallocNextFit(b, 8, &c2)
		assert.Equal(t, a, bStart)
	}
}

func TestRoundTripRestoresUnionOfRuns(t *testing.T) {
	l := freelist.New(20)
	var c freelist.Counters
	start := l.MallocBestFit(40, 8, &c) // 5 units
	l.Free(start, 5, &c)
	assert.Equal(t, []freelist.Run{{Start: 0, Length: 20}}, l.Runs())
}

func TestAllocSequenceReverseFreeRestoresSingleRun(t *testing.T) {
	l := freelist.New(32)
	var c freelist.Counters
	sizes := []int{8, 16, 24, 8}
	var starts, sz []int
	for _, b := range sizes {
		s := l.MallocFirstFit(b, 8, &c)
		require.NotEqual(t, -1, s)
		starts = append(starts, s)
		sz = append(sz, (b+7)/8)
	}
	for i := len(starts) - 1; i >= 0; i-- {
		l.Free(starts[i], sz[i], &c)
	}
	assert.Equal(t, []freelist.Run{{Start: 0, Length: 32}}, l.Runs())
}

func TestNextFitFailsCleanlyAfterListEmptied(t *testing.T) {
	l := freelist.New(4)
	var c freelist.Counters
	// Consume the only run whole, so it is removed and the cursor no longer
	// indexes a valid run.
	require.Equal(t, 0, l.MallocNextFit(32, 8, &c))
	// List is now empty; a further alloc must fail cleanly rather than panic.
	assert.Equal(t, -1, l.MallocNextFit(8, 8, &c))
}
