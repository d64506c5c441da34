package report_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredump-labs/memplace/internal/config"
	"github.com/coredump-labs/memplace/internal/freelist"
	"github.com/coredump-labs/memplace/internal/metrics"
	"github.com/coredump-labs/memplace/internal/report"
	"github.com/coredump-labs/memplace/internal/workload"
)

func diffStrings(t *testing.T, name, want, got string) string {
	t.Helper()
	edits := myers.ComputeEdits(span.URI(name), want, got)
	diff := gotextdiff.ToUnified(name, name, want, edits)
	return fmt.Sprint(diff)
}

func TestSummaryHeaderMatchesExpectedLayout(t *testing.T) {
	var buf bytes.Buffer
	s := report.NewSummary(&buf)
	s.Header(config.Params{
		TestName:    "run1",
		Percentages: workload.Percentages{Small: 50, Medium: 30, Large: 20},
		UnitSize:    8,
		TotalUnits:  1000,
		LostMode:    true,
	}, freelist.FirstFit)
	require.NoError(t, s.Close())

	want := "Test name: run1\n" +
		"Algorithm: FF\n" +
		"Small %: 50\n" +
		"Medium %: 30\n" +
		"Large %: 20\n" +
		"Memory unit size: 8\n" +
		"Total units: 1000\n" +
		"Lost objects mode: y\n\n"

	if diff := diffStrings(t, "summary_header.txt", want, buf.String()); diff != "" {
		t.Fatalf("unexpected header text:\n%s", diff)
	}
}

func TestSummaryPeriodicBlockFormat(t *testing.T) {
	var buf bytes.Buffer
	s := report.NewSummary(&buf)
	s.Periodic(2000, metrics.Snapshot{
		TotalBytes: 8000, UsedBytes: 4000, FreeBytes: 4000,
		MemUsedPercent: 50, MemFreePercent: 50,
		InternalFragBytes: 100, InternalFragPercent: 2.5,
		NumFreeAreas: 3, LargestFree: 50, SmallestFree: 5, AvgFreeSize: 20.33,
		HeapAllocCount: 40, HeapBytesSum: 1200,
		LostCount: 1, LostBytes: 35, LostPercent: 0.44,
	}, 3800)
	require.NoError(t, s.Close())
	assert.Contains(t, buf.String(), "time 2000:\n")
	assert.Contains(t, buf.String(), "  required bytes: 3800\n")
	assert.Contains(t, buf.String(), "  % memory in use: 50.00\n")
}

func TestAppendMasterSummaryColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	err := report.AppendMasterSummary(&buf, "run1", []report.Result{
		{
			Policy: "FF",
			Metrics: metrics.Snapshot{
				MemUsedPercent: 12.34, InternalFragPercent: 1.1, MemFreePercent: 87.66, LostPercent: 0.5,
			},
			HeapAllocations: 10, AllocCalls: 20, OpsMalloc: 30, FreeCalls: 5, OpsFree: 8,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "run1\tFF\t12.34\t1.10\t87.66\t0.50\t10\t20\t30\t5\t8\n", buf.String())
}
