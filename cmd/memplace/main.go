// Command memplace runs the FF/NF/BF/WF memory-placement comparison
// simulation, asking the operator for the workload parameters
// interactively (or reading them from a batch file) and writing a
// per-policy summary file and event log for each.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coredump-labs/memplace/internal/config"
	"github.com/coredump-labs/memplace/internal/freelist"
	"github.com/coredump-labs/memplace/internal/metrics"
	"github.com/coredump-labs/memplace/internal/report"
	"github.com/coredump-labs/memplace/internal/sim"
	"github.com/coredump-labs/memplace/internal/simlog"
	"github.com/coredump-labs/memplace/internal/workload"
)

var policies = []freelist.Policy{freelist.FirstFit, freelist.NextFit, freelist.BestFit, freelist.WorstFit}

func main() {
	batchFile := flag.String("batch", "", "read parameters from a key=value file instead of stdin")
	seed := flag.Int64("seed", 10, "RNG seed reused for every policy run")
	verbose := flag.Bool("v", false, "emit structured diagnostic logging to stderr")
	flag.Parse()

	log := simlog.Nop()
	if *verbose {
		log = simlog.New(os.Stderr, zerolog.InfoLevel)
	}

	if err := run(*batchFile, *seed, log); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(batchFile string, seed int64, log simlog.Logger) error {
	stdin := bufio.NewReader(os.Stdin)

	var (
		p   config.Params
		err error
	)
	if batchFile != "" {
		p, err = readBatchParams(batchFile)
	} else {
		p, err = promptParams(stdin, os.Stdout)
	}
	if err != nil {
		return err
	}
	p.Seed = seed

	warnings, err := config.Validate(p)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Println("Warning:", w)
	}

	tracer := noop.NewTracerProvider().Tracer("memplace")

	results := make(map[string]report.Result, len(policies))
	var ordered []report.Result

	for _, policy := range policies {
		gen := workload.NewGenerator(p.Seed, p.Percentages, p.LostMode)
		d := sim.New(policy, p, gen, log, tracer)

		summaryName := fmt.Sprintf("%s_%s.txt", p.SummaryBase, policy)
		logName := fmt.Sprintf("%s_%s.txt", p.LogBase, policy)

		summaryFile, err := os.Create(summaryName)
		if err != nil {
			return fmt.Errorf("opening summary file: %w", err)
		}
		logFile, err := os.Create(logName)
		if err != nil {
			summaryFile.Close()
			return fmt.Errorf("opening log file: %w", err)
		}

		summary := report.NewSummary(summaryFile)
		eventLog := report.NewEventLog(logFile)
		summary.Header(p, policy)

		msink := &summaryMetricsSink{summary: summary}
		outcome := d.Run(context.Background(), eventLog, msink)

		result := report.FromOutcome(outcome)
		summary.Final(result)
		eventLog.Complete()

		closeErr := summary.Close()
		logErr := eventLog.Close()
		summaryFile.Close()
		logFile.Close()
		if closeErr != nil {
			return fmt.Errorf("writing summary file: %w", closeErr)
		}
		if logErr != nil {
			return fmt.Errorf("writing log file: %w", logErr)
		}

		fmt.Printf("Finished simulation for %s. Summary in %s, log in %s\n", policy, summaryName, logName)

		results[policy.String()] = result
		ordered = append(ordered, result)
	}

	report.PrintComparisonTable(os.Stdout, p.TestName, results)

	if promptYesNo(stdin, os.Stdout, "Append final results to master summary file (master_summary.txt)? (y/n): ") {
		f, err := os.OpenFile("master_summary.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening master summary: %w", err)
		}
		defer f.Close()
		if err := report.AppendMasterSummary(f, p.TestName, ordered); err != nil {
			return fmt.Errorf("writing master summary: %w", err)
		}
		fmt.Println("Results appended to master_summary.txt")
	}

	return nil
}

// summaryMetricsSink adapts report.Summary's prefill/periodic writers to
// the sim.MetricsSink interface.
type summaryMetricsSink struct {
	summary *report.Summary
}

func (s *summaryMetricsSink) Prefill(tick int, snap metrics.Snapshot) { s.summary.Prefill(tick, snap) }
func (s *summaryMetricsSink) Periodic(tick int, snap metrics.Snapshot, requiredBytesSum int) {
	s.summary.Periodic(tick, snap, requiredBytesSum)
}

func promptParams(r *bufio.Reader, out *os.File) (config.Params, error) {
	fmt.Fprintln(out, "Memory Simulation Program")

	small, err := promptInt(r, out, "Enter % small jobs: ")
	if err != nil {
		return config.Params{}, err
	}
	medium, err := promptInt(r, out, "Enter % medium jobs: ")
	if err != nil {
		return config.Params{}, err
	}
	large, err := promptInt(r, out, "Enter % large jobs: ")
	if err != nil {
		return config.Params{}, err
	}
	unitSize, err := promptInt(r, out, "Enter memory unit size (multiple of 8 recommended): ")
	if err != nil {
		return config.Params{}, err
	}
	totalUnits, err := promptInt(r, out, "Enter total number of memory units: ")
	if err != nil {
		return config.Params{}, err
	}
	testName, err := promptLine(r, out, "Enter test name: ")
	if err != nil {
		return config.Params{}, err
	}
	summaryBase, err := promptLine(r, out, "Enter base name for summary files: ")
	if err != nil {
		return config.Params{}, err
	}
	logBase, err := promptLine(r, out, "Enter base name for log files: ")
	if err != nil {
		return config.Params{}, err
	}
	lostMode, err := promptLine(r, out, "Lost objects mode (y/n): ")
	if err != nil {
		return config.Params{}, err
	}

	return config.Params{
		Percentages: workload.Percentages{Small: small, Medium: medium, Large: large},
		UnitSize:    unitSize,
		TotalUnits:  totalUnits,
		TestName:    testName,
		SummaryBase: summaryBase,
		LogBase:     logBase,
		LostMode:    strings.EqualFold(lostMode, "y"),
	}, nil
}

func promptYesNo(r *bufio.Reader, out *os.File, prompt string) bool {
	line, err := promptLine(r, out, prompt)
	if err != nil {
		return false
	}
	return strings.EqualFold(line, "y")
}

func promptLine(r *bufio.Reader, out *os.File, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptInt(r *bufio.Reader, out *os.File, prompt string) (int, error) {
	line, err := promptLine(r, out, prompt)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(line)
}

// readBatchParams reads flat key=value lines, one per parameter, so the
// whole run can be scripted without an interactive terminal.
func readBatchParams(path string) (config.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Params{}, err
	}
	kv := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return config.Params{}, fmt.Errorf("batch file: malformed line %q", line)
		}
		kv[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	atoi := func(key string) (int, error) {
		v, ok := kv[key]
		if !ok {
			return 0, fmt.Errorf("batch file: missing key %q", key)
		}
		return strconv.Atoi(v)
	}

	small, err := atoi("small_pct")
	if err != nil {
		return config.Params{}, err
	}
	medium, err := atoi("medium_pct")
	if err != nil {
		return config.Params{}, err
	}
	large, err := atoi("large_pct")
	if err != nil {
		return config.Params{}, err
	}
	unitSize, err := atoi("unit_size")
	if err != nil {
		return config.Params{}, err
	}
	totalUnits, err := atoi("total_units")
	if err != nil {
		return config.Params{}, err
	}

	return config.Params{
		Percentages: workload.Percentages{Small: small, Medium: medium, Large: large},
		UnitSize:    unitSize,
		TotalUnits:  totalUnits,
		TestName:    kv["test_name"],
		SummaryBase: kv["summary_base"],
		LogBase:     kv["log_base"],
		LostMode:    strings.EqualFold(kv["lost_mode"], "y"),
	}, nil
}
