package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

// RetryPolicy configures per-operation retry behavior.
type RetryPolicy struct {
	MaxAttempts int                                        // total attempts including initial try
	Delay       time.Duration                              // base delay; doubles after each failed attempt (used if DelayFunc nil)
	ShouldRetry func(error) bool                           // predicate; if nil, all errors retried
	DelayFunc   func(attempt int, err error) time.Duration // dynamic backoff; attempt is 1-based
}

// delay returns the pause after the given failed attempt.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	if p.DelayFunc != nil {
		return p.DelayFunc(attempt, err)
	}
	if p.Delay <= 0 {
		return 0
	}
	shift := uint(attempt - 1)
	if shift > 20 {
		// Guards shift overflow; a delay this large always crosses the
		// run deadline anyway.
		shift = 20
	}
	return p.Delay << shift
}

// Executor issues one logical operation at a time: it times each attempt,
// retries per policy, and converts the final result into a classified
// [metrics.Outcome]. Errors never escape during normal operation.
type Executor struct {
	policy RetryPolicy
}

// NewExecutor creates an Executor with the given retry policy.
func NewExecutor(policy RetryPolicy) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Executor{policy: policy}
}

// Preparer is implemented by requesters that synthesize fresh input once per
// logical operation. Prepare runs before the first attempt, so retries
// replay the same input instead of generating a new one.
type Preparer interface {
	Prepare()
}

// Execute runs one logical operation to its terminal outcome. Retries stay
// local to the operation: a retry is abandoned, keeping the last known
// outcome, when its backoff pause would cross the run deadline. A zero
// deadline disables that check.
func (e *Executor) Execute(ctx context.Context, op Operation, deadline time.Time) metrics.Outcome {
	out := metrics.Outcome{Op: op.Name}
	if p, ok := op.Requester.(Preparer); ok {
		p.Prepare()
	}

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		out.Attempts = attempt

		start := time.Now()
		err := op.Requester.Do(ctx)
		latency := time.Since(start)

		e.classify(err, latency, &out)
		if out.Class == metrics.Success {
			return out
		}
		if attempt == e.policy.MaxAttempts {
			return out
		}
		if e.policy.ShouldRetry != nil && !e.policy.ShouldRetry(err) {
			return out
		}

		delay := e.policy.delay(attempt, err)
		if !deadline.IsZero() && !time.Now().Add(delay).Before(deadline) {
			return out
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return out
			}
		}
	}
	return out
}

// classify maps one attempt's result onto the outcome. A domain error means
// the exchange completed, so the latency sample is kept; transport errors
// carry none.
func (e *Executor) classify(err error, latency time.Duration, out *metrics.Outcome) {
	if err == nil {
		out.Class = metrics.Success
		out.Latency = latency
		out.Reason = ""
		return
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		out.Class = metrics.SoftFailure
		out.Latency = latency
		reason := domainErr.Reason
		if reason == "" {
			reason = fmt.Sprintf("http_%d", domainErr.StatusCode)
		}
		out.Reason = metrics.SanitizeReason(reason)
		return
	}

	out.Class = metrics.HardFailure
	out.Latency = 0
	out.Reason = metrics.ReasonFromError(err)
}
