// Package metrics provides thread-safe metrics collection and aggregation for
// benchmark runs.
//
// The package collects one [Outcome] per logical operation: a success or soft
// failure with its latency, or a hard failure with a reason. The central
// [Collector] owns all mutable aggregate state for a run; workers only submit
// observations and never read aggregates directly.
//
//	collector := metrics.NewCollector()
//	collector.RecordSuccess("transaction", 12*time.Millisecond)
//	collector.RecordSoftFailure("transaction", 40*time.Millisecond, "http_500")
//	collector.RecordHardFailure("round", "connection_refused")
//
// # Snapshots
//
// [Collector.Snapshot] returns an immutable point-in-time copy with the full
// recorded latency list, sorted ascending. Percentiles over a snapshot are
// exact rank selections into that list:
//
//	snap := collector.Snapshot()
//	p95 := snap.Percentile(0.95)
//
// The copy happens under the collector's lock; the sort happens outside it,
// so concurrent writers are never blocked behind a reader's sort.
//
// # Live statistics
//
// [Collector.Stats] serves the progress line and dashboard. It reads counters
// and an HDR histogram instead of copying the sample list, so periodic ticks
// stay cheap on long runs. Reported run results always come from a Snapshot,
// never from Stats.
//
// # Invariants
//
// For any snapshot, Successes + SoftFailures + HardFailures equals the total
// number of logical operations observed, and len(Latencies) equals
// Successes + SoftFailures: hard failures carry no latency sample.
package metrics
