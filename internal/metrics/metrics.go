// Package metrics computes the pure fragmentation/utilization snapshot from
// allocator and driver state.
package metrics

import "github.com/coredump-labs/memplace/internal/freelist"

// Snapshot is the full set of derived values reported in summary output.
type Snapshot struct {
	TotalBytes  int
	UsedBytes   int
	FreeBytes   int
	MemUsedPercent float64
	MemFreePercent float64

	InternalFragBytes   int
	InternalFragPercent float64

	NumFreeAreas int
	LargestFree  int
	SmallestFree int
	AvgFreeSize  float64

	HeapAllocCount int
	HeapBytesSum   int

	LostCount   int
	LostBytes   int
	LostPercent float64

	PeakUsedPercent float64
}

// Input bundles the state Compute needs.
type Input struct {
	TotalUnits        int
	UnitSize          int
	AllocatedUnits    int
	RequiredBytesSum  int
	FreeRuns          []freelist.Run
	HeapAllocCount    int
	HeapBytesSum      int
	LostCount         int
	LostBytes         int
	MaxAllocatedUnits int
}

// Compute derives a Snapshot from the given allocator/driver state. It is a
// pure function: identical input always yields identical output.
func Compute(in Input) Snapshot {
	totalBytes := in.TotalUnits * in.UnitSize
	usedBytes := in.AllocatedUnits * in.UnitSize
	freeBytes := totalBytes - usedBytes

	internalFragBytes := usedBytes - in.RequiredBytesSum
	if internalFragBytes < 0 {
		internalFragBytes = 0
	}

	var internalFragPercent float64
	if usedBytes > 0 {
		internalFragPercent = float64(internalFragBytes) / float64(usedBytes) * 100.0
	}

	var memUsedPercent, memFreePercent, lostPercent, peakUsedPercent float64
	if totalBytes > 0 {
		memUsedPercent = float64(usedBytes) / float64(totalBytes) * 100.0
		memFreePercent = float64(freeBytes) / float64(totalBytes) * 100.0
		lostPercent = float64(in.LostBytes) / float64(totalBytes) * 100.0
		peakUsedPercent = float64(in.MaxAllocatedUnits*in.UnitSize) / float64(totalBytes) * 100.0
	}

	numFreeAreas := len(in.FreeRuns)
	var largest, smallest int
	var avgFreeSize float64
	if numFreeAreas > 0 {
		largest = in.FreeRuns[0].Length
		smallest = in.FreeRuns[0].Length
		sum := 0
		for _, r := range in.FreeRuns {
			if r.Length > largest {
				largest = r.Length
			}
			if r.Length < smallest {
				smallest = r.Length
			}
			sum += r.Length
		}
		avgFreeSize = float64(sum) / float64(numFreeAreas)
	}

	return Snapshot{
		TotalBytes:          totalBytes,
		UsedBytes:           usedBytes,
		FreeBytes:           freeBytes,
		MemUsedPercent:      memUsedPercent,
		MemFreePercent:      memFreePercent,
		InternalFragBytes:   internalFragBytes,
		InternalFragPercent: internalFragPercent,
		NumFreeAreas:        numFreeAreas,
		LargestFree:         largest,
		SmallestFree:        smallest,
		AvgFreeSize:         avgFreeSize,
		HeapAllocCount:      in.HeapAllocCount,
		HeapBytesSum:        in.HeapBytesSum,
		LostCount:           in.LostCount,
		LostBytes:           in.LostBytes,
		LostPercent:         lostPercent,
		PeakUsedPercent:     peakUsedPercent,
	}
}
