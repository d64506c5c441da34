package report

import (
	"fmt"
	"io"
)

// AppendMasterSummary appends one tab-separated row per policy to w, in the
// column order spec.md §6 defines: test_name, policy, mem_used_percent,
// internal_frag_percent, mem_free_percent, lost_percent, heap_allocations,
// alloc_calls, ops_malloc, free_calls, ops_free.
func AppendMasterSummary(w io.Writer, testName string, results []Result) error {
	for _, r := range results {
		_, err := fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%d\t%d\t%d\t%d\n",
			testName, r.Policy,
			r.Metrics.MemUsedPercent, r.Metrics.InternalFragPercent, r.Metrics.MemFreePercent,
			r.Metrics.LostPercent, r.HeapAllocations, r.AllocCalls, r.OpsMalloc,
			r.FreeCalls, r.OpsFree,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
