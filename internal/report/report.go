package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

// PrintReport writes the human-readable run report. The summary supplies the
// headline numbers; the snapshot supplies the latency spread, the
// per-operation breakdown, and the failure reasons.
func PrintReport(w io.Writer, summary Summary, snap metrics.Snapshot) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", summary.RunID)
	fmt.Fprintf(w, "Target:            %s\n", summary.Target)
	fmt.Fprintf(w, "Concurrency:       %d\n", summary.Concurrency)
	fmt.Fprintf(w, "Duration:          %s\n", summary.Duration)
	fmt.Fprintf(w, "Total Operations:  %d\n", summary.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", summary.SuccessfulRequests)
	fmt.Fprintf(w, "Soft Failures:     %d\n", summary.SoftFailures)
	fmt.Fprintf(w, "Hard Failures:     %d\n", summary.HardFailures)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", summary.RPS)
	fmt.Fprintf(w, "Success Rate:      %.2f%%\n", summary.SuccessRate*100)

	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", snap.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", snap.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", snap.Mean())
	fmt.Fprintf(w, "  P50:             %s\n", snap.Percentile(0.50))
	fmt.Fprintf(w, "  P95:             %s\n", snap.Percentile(0.95))
	fmt.Fprintf(w, "  P99:             %s\n", snap.Percentile(0.99))

	if len(snap.Ops) > 0 {
		fmt.Fprintln(w, "\nOperation Breakdown:")
		names := make([]string, 0, len(snap.Ops))
		for name := range snap.Ops {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			a, b := snap.Ops[names[i]].Total(), snap.Ops[names[j]].Total()
			if a != b {
				return a > b
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			op := snap.Ops[name]
			share := 0.0
			if total := snap.Total(); total > 0 {
				share = (float64(op.Total()) / float64(total)) * 100
			}

			fmt.Fprintf(
				w,
				"  - %s: total=%d (%.1f%%), successes=%d, soft=%d, hard=%d, p95=%s\n",
				name,
				op.Total(),
				share,
				op.Successes,
				op.SoftFailures,
				op.HardFailures,
				op.Percentile(0.95),
			)
		}
	}

	if reasons := metrics.SortReasons(snap.Reasons); len(reasons) > 0 {
		fmt.Fprintln(w, "\nFailure Reasons:")
		for _, reason := range reasons {
			fmt.Fprintf(w, "  %s: %d\n", reason.Reason, reason.Count)
		}
	}

	verdict := "no"
	if summary.MeetsTarget {
		verdict = "yes"
	}
	fmt.Fprintf(w, "\nMeets P95 Target:  %s (p95 %.2fms, target %.2fms)\n",
		verdict, summary.LatencyP95Ms, summary.TargetP95Ms)
}

// PrintJSONReport writes the summary as indented JSON, the same object the
// persisted artifact carries.
func PrintJSONReport(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
