// Package report turns a finished run's metrics into the final summary:
// the persisted JSON artifact, the console report, and the live progress
// line.
package report

import (
	"time"

	"github.com/vgs-kv/loadbench/internal/metrics"
	"github.com/vgs-kv/loadbench/internal/target"
)

// Summary is the final result of a benchmark run. Finalize creates it once;
// it is never mutated afterwards. WriteSummary persists it as the JSON
// artifact consumed by the external polling exporter, so every field is
// always present in the encoded form and missing data is zero, not omitted.
type Summary struct {
	RunID       string `json:"run_id"`
	Target      string `json:"target"`
	Concurrency int    `json:"concurrency"`
	Duration    string `json:"duration"`

	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	SoftFailures       int64 `json:"soft_failures"`
	HardFailures       int64 `json:"hard_failures"`

	RPS         float64 `json:"rps"`
	SuccessRate float64 `json:"success_rate"`
	ErrorRate   float64 `json:"error_rate"`

	AvgLatencyMs float64 `json:"avg_latency_ms"`
	LatencyP50Ms float64 `json:"latency_p50_ms"`
	LatencyP95Ms float64 `json:"latency_p95_ms"`
	LatencyP99Ms float64 `json:"latency_p99_ms"`

	WriteSuccessPct     float64 `json:"write_success_pct"`
	RoundRetrievalP95Ms float64 `json:"round_retrieval_p95_ms"`
	HTTPRequestP95Ms    float64 `json:"http_request_p95_ms"`

	MeetsTarget bool    `json:"meets_target"`
	TargetP95Ms float64 `json:"target_p95_ms"`

	Timestamp int64 `json:"timestamp"`
}

// Meta carries the run parameters Finalize copies into the Summary.
type Meta struct {
	RunID       string
	Target      string
	Concurrency int
	Duration    time.Duration
	TargetP95   time.Duration

	// CompletedAt stamps the summary; the zero value means time.Now().
	CompletedAt time.Time
}

// Finalize derives a Summary from a finished run's snapshot. elapsed is the
// wall-clock time the run actually took; rates are computed against it
// rather than the configured duration, so an interrupted run still reports
// honest throughput.
func Finalize(snap metrics.Snapshot, meta Meta, elapsed time.Duration) Summary {
	completed := meta.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	p95 := snap.Percentile(0.95)
	s := Summary{
		RunID:       meta.RunID,
		Target:      meta.Target,
		Concurrency: meta.Concurrency,
		Duration:    meta.Duration.String(),

		TotalRequests:      snap.Total(),
		SuccessfulRequests: snap.Successes,
		SoftFailures:       snap.SoftFailures,
		HardFailures:       snap.HardFailures,

		SuccessRate: snap.SuccessRate(),

		AvgLatencyMs: toMillis(snap.Mean()),
		LatencyP50Ms: toMillis(snap.Percentile(0.50)),
		LatencyP95Ms: toMillis(p95),
		LatencyP99Ms: toMillis(snap.Percentile(0.99)),

		HTTPRequestP95Ms: toMillis(p95),

		MeetsTarget: p95 <= meta.TargetP95,
		TargetP95Ms: toMillis(meta.TargetP95),

		Timestamp: completed.UnixMilli(),
	}
	if elapsed > 0 {
		s.RPS = float64(snap.Successes) / elapsed.Seconds()
	}
	if total := snap.Total(); total > 0 {
		s.ErrorRate = float64(snap.SoftFailures+snap.HardFailures) / float64(total)
	}
	if txn, ok := snap.Ops[target.OpTransaction]; ok {
		s.WriteSuccessPct = txn.SuccessRate() * 100
	}
	if round, ok := snap.Ops[target.OpRound]; ok {
		s.RoundRetrievalP95Ms = toMillis(round.Percentile(0.95))
	}
	return s
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
