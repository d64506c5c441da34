package report

import (
	"fmt"
	"io"
)

// policyOrder is the fixed column order every comparison table uses.
var policyOrder = []string{"FF", "NF", "BF", "WF"}

// PrintComparisonTable writes the final cross-policy metrics summary table
// (spec.md §1 calls this an out-of-scope "tabular comparison printer"; its
// exact column set is supplemented from original_source/Program2.py's
// print_final_table, per SPEC_FULL.md §11).
func PrintComparisonTable(w io.Writer, testName string, results map[string]Result) {
	get := func(policy string) Result { return results[policy] }

	fmt.Fprintln(w)
	fmt.Fprintln(w, "                  FINAL METRICS SUMMARY TABLE")
	fmt.Fprintln(w, "                  Test Name:", testName)
	fmt.Fprintln(w, "---------------------------------------------------------------")
	fmt.Fprintf(w, "%-30s %12s %12s %12s %12s\n", "Metric", "FF", "NF", "BF", "WF")
	fmt.Fprintln(w, "------------------------------------------------------------------------------------")

	row := func(name string, val func(Result) string) {
		fmt.Fprintf(w, "%-30s %12s %12s %12s %12s\n", name,
			val(get(policyOrder[0])), val(get(policyOrder[1])), val(get(policyOrder[2])), val(get(policyOrder[3])))
	}
	intOf := func(f func(Result) int) func(Result) string {
		return func(r Result) string { return fmt.Sprintf("%d", f(r)) }
	}
	pctOf := func(f func(Result) float64) func(Result) string {
		return func(r Result) string { return fmt.Sprintf("%.2f", f(r)) }
	}

	row("Small jobs", intOf(func(r Result) int { return r.SmallJobs }))
	row("Medium jobs", intOf(func(r Result) int { return r.MediumJobs }))
	row("Large jobs", intOf(func(r Result) int { return r.LargeJobs }))
	fmt.Fprintln(w)

	row("Total memory (bytes)", intOf(func(r Result) int { return r.Metrics.TotalBytes }))
	row("Used memory (bytes)", intOf(func(r Result) int { return r.Metrics.UsedBytes }))
	row("% memory in use", pctOf(func(r Result) float64 { return r.Metrics.MemUsedPercent }))
	row("Required bytes", intOf(func(r Result) int { return r.RequiredBytes }))
	row("% internal frag", pctOf(func(r Result) float64 { return r.Metrics.InternalFragPercent }))
	row("% memory free", pctOf(func(r Result) float64 { return r.Metrics.MemFreePercent }))
	row("Free areas", intOf(func(r Result) int { return r.Metrics.NumFreeAreas }))
	row("Largest free block", intOf(func(r Result) int { return r.Metrics.LargestFree }))
	row("Smallest free block", intOf(func(r Result) int { return r.Metrics.SmallestFree }))
	fmt.Fprintln(w)

	row("Heap allocations", intOf(func(r Result) int { return r.HeapAllocations }))
	row("Heap bytes", intOf(func(r Result) int { return r.HeapBytes }))
	row("Lost objects", intOf(func(r Result) int { return r.LostObjects }))
	row("Lost bytes", intOf(func(r Result) int { return r.LostBytes }))
	row("% lost memory", pctOf(func(r Result) float64 { return r.Metrics.LostPercent }))
	fmt.Fprintln(w)

	row("Alloc requests", intOf(func(r Result) int { return r.AllocCalls }))
	row("Alloc operations", intOf(func(r Result) int { return r.OpsMalloc }))
	row("Avg ops per alloc", pctOf(func(r Result) float64 { return r.AvgOpsAlloc }))
	row("Free requests", intOf(func(r Result) int { return r.FreeCalls }))
	row("Free operations", intOf(func(r Result) int { return r.OpsFree }))
	row("Avg ops per free", pctOf(func(r Result) float64 { return r.AvgOpsFree }))
	fmt.Fprintln(w, "------------------------------------------------------------------------------------")
}
