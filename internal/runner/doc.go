// Package runner provides the core load-generation engine for loadbench.
//
// The runner package drives a bounded pool of concurrent workers against a
// wall-clock deadline:
//   - Configurable concurrency levels
//   - Weighted selection between operation kinds
//   - Per-operation retry with exponential backoff
//   - Randomized think time between iterations
//   - Optional aggregate rate caps (uniform, Poisson)
//
// # Basic Usage
//
// Create a runner with options and a workload:
//
//	opts := runner.Options{
//		Concurrency: 50,
//		Duration:    time.Minute,
//		Retry:       runner.RetryPolicy{MaxAttempts: 3, Delay: 100 * time.Millisecond},
//		Workload:    myWorkload,
//		Collector:   collector,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines a single request attempt:
//
//	type Requester interface {
//		Do(ctx context.Context) error
//	}
//
// A [Workload] groups requesters into weighted [Operation] values per
// worker. Each worker loops sequentially: pick an operation, execute it to a
// terminal outcome, record the outcome, idle for the think time. Workers
// share no mutable state besides the collector.
//
// # Execution and Classification
//
// The [Executor] runs one logical operation at a time: it times each
// attempt, applies the [RetryPolicy], and classifies the terminal result as
// success, soft failure (a completed exchange reporting a [DomainError]) or
// hard failure (transport error, no usable latency). Backoff before the k-th
// retry doubles from the base delay; a retry whose pause would cross the run
// deadline is abandoned, keeping the last known outcome.
//
// # Deadline Semantics
//
// Workers poll the wall clock: no new operation starts at or after the
// deadline, but an operation in flight, including its remaining retries, is
// allowed to finish.
package runner
