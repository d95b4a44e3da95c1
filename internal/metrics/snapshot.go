package metrics

import "time"

// Snapshot is an immutable point-in-time copy of a [Collector]'s state.
// Latency lists are sorted ascending.
type Snapshot struct {
	Successes    int64
	SoftFailures int64
	HardFailures int64

	// Latencies holds every recorded sample, sorted ascending. Its length
	// always equals Successes + SoftFailures.
	Latencies []time.Duration

	MinLatency time.Duration
	MaxLatency time.Duration
	sumLatency time.Duration

	// Ops breaks the run down by logical operation name.
	Ops map[string]OpSnapshot

	// Reasons counts failure outcomes by reason label.
	Reasons map[string]int64
}

// OpSnapshot is the per-operation slice of a [Snapshot].
type OpSnapshot struct {
	Successes    int64
	SoftFailures int64
	HardFailures int64

	// Latencies holds the operation's samples, sorted ascending.
	Latencies []time.Duration
}

// Total returns the number of logical operations the snapshot covers.
func (s Snapshot) Total() int64 {
	return s.Successes + s.SoftFailures + s.HardFailures
}

// SuccessRate returns the fraction of operations that succeeded, in [0, 1].
// It returns 0 when the snapshot is empty.
func (s Snapshot) SuccessRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Successes) / float64(total)
}

// Percentile returns the p-th percentile of the snapshot's latencies.
func (s Snapshot) Percentile(p float64) time.Duration {
	return Percentile(s.Latencies, p)
}

// Mean returns the arithmetic mean latency, or 0 for an empty snapshot.
func (s Snapshot) Mean() time.Duration {
	if len(s.Latencies) == 0 {
		return 0
	}
	return s.sumLatency / time.Duration(len(s.Latencies))
}

// Total returns the number of logical operations recorded for the operation.
func (o OpSnapshot) Total() int64 {
	return o.Successes + o.SoftFailures + o.HardFailures
}

// SuccessRate returns the fraction of the operation's outcomes that
// succeeded, in [0, 1].
func (o OpSnapshot) SuccessRate() float64 {
	total := o.Total()
	if total == 0 {
		return 0
	}
	return float64(o.Successes) / float64(total)
}

// Percentile returns the p-th percentile of the operation's latencies.
func (o OpSnapshot) Percentile(p float64) time.Duration {
	return Percentile(o.Latencies, p)
}

// Percentile selects the p-th percentile from an ascending-sorted sample
// list by rank: the element at index floor(p*n), clamped to the last index.
// An empty list yields 0. The selection is exact for the collected samples;
// no interpolation is applied.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(p * float64(n))
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}
