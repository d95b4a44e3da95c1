package metrics

import "time"

// OutcomeClass classifies the terminal result of a logical operation.
type OutcomeClass int

const (
	// Success means the operation completed and the response satisfied the
	// operation's success criteria.
	Success OutcomeClass = iota
	// SoftFailure means a response arrived but reported a domain-level
	// failure. The latency of the exchange is still meaningful.
	SoftFailure
	// HardFailure means no usable response was obtained: the final attempt
	// ended in a transport or timeout error. No latency sample is recorded.
	HardFailure
)

// String returns the snake_case label used in reports and logs.
func (c OutcomeClass) String() string {
	switch c {
	case Success:
		return "success"
	case SoftFailure:
		return "soft_failure"
	case HardFailure:
		return "hard_failure"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one logical operation, after any retries.
type Outcome struct {
	// Op names the logical operation, e.g. "transaction" or "round".
	Op string
	// Class is the outcome classification.
	Class OutcomeClass
	// Latency is the duration of the final attempt. It is meaningful only
	// for Success and SoftFailure outcomes.
	Latency time.Duration
	// Reason is a short label explaining a failure. Empty for successes.
	Reason string
	// Attempts is the number of attempts made, including the first.
	Attempts int
}
