package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000 // 60s in microseconds

	initialSampleCap = 1024
)

// Collector accumulates operation outcomes from concurrent workers.
//
// All exported methods are safe for concurrent use. Recording is O(1) apart
// from amortized slice growth; nothing is sorted or aggregated on the hot
// path.
type Collector struct {
	mu sync.Mutex

	successes    int64
	softFailures int64
	hardFailures int64

	// latencies holds every recorded sample in arrival order. Sorting is
	// deferred to Snapshot so recording stays cheap.
	latencies  []time.Duration
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration

	perOp   map[string]*opAccum
	reasons map[string]int64

	// hist feeds the live Stats view only; reported percentiles come from
	// the exact sample list in a Snapshot.
	hist *hdrhistogram.Histogram
}

type opAccum struct {
	successes    int64
	softFailures int64
	hardFailures int64
	latencies    []time.Duration
}

// NewCollector creates a Collector ready for recording.
func NewCollector() *Collector {
	return &Collector{
		latencies: make([]time.Duration, 0, initialSampleCap),
		perOp:     make(map[string]*opAccum),
		reasons:   make(map[string]int64),
		hist:      hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

// RecordSuccess records a successful operation and its latency.
func (c *Collector) RecordSuccess(op string, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successes++
	acc := c.accum(op)
	acc.successes++
	c.observeLatency(acc, latency)
}

// RecordSoftFailure records a domain-level failure. The exchange completed,
// so its latency is recorded alongside successes.
func (c *Collector) RecordSoftFailure(op string, latency time.Duration, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.softFailures++
	acc := c.accum(op)
	acc.softFailures++
	c.observeLatency(acc, latency)
	c.countReason(reason)
}

// RecordHardFailure records an operation that produced no usable response.
// No latency sample is taken.
func (c *Collector) RecordHardFailure(op string, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hardFailures++
	c.accum(op).hardFailures++
	c.countReason(reason)
}

// Observe records an outcome, dispatching on its class.
func (c *Collector) Observe(out Outcome) {
	switch out.Class {
	case SoftFailure:
		c.RecordSoftFailure(out.Op, out.Latency, out.Reason)
	case HardFailure:
		c.RecordHardFailure(out.Op, out.Reason)
	default:
		c.RecordSuccess(out.Op, out.Latency)
	}
}

func (c *Collector) accum(op string) *opAccum {
	acc, ok := c.perOp[op]
	if !ok {
		acc = &opAccum{}
		c.perOp[op] = acc
	}
	return acc
}

func (c *Collector) observeLatency(acc *opAccum, latency time.Duration) {
	c.latencies = append(c.latencies, latency)
	acc.latencies = append(acc.latencies, latency)

	if c.minLatency == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
	c.sumLatency += latency

	latencyUs := latency.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	} else if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}
	_ = c.hist.RecordValue(latencyUs)
}

func (c *Collector) countReason(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	c.reasons[reason]++
}

// Snapshot returns an immutable copy of all accumulated state. Latency lists
// in the returned snapshot are sorted ascending; the sort runs outside the
// collector's lock.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()

	snap := Snapshot{
		Successes:    c.successes,
		SoftFailures: c.softFailures,
		HardFailures: c.hardFailures,
		Latencies:    append([]time.Duration(nil), c.latencies...),
		MinLatency:   c.minLatency,
		MaxLatency:   c.maxLatency,
		sumLatency:   c.sumLatency,
		Ops:          make(map[string]OpSnapshot, len(c.perOp)),
		Reasons:      make(map[string]int64, len(c.reasons)),
	}
	for op, acc := range c.perOp {
		snap.Ops[op] = OpSnapshot{
			Successes:    acc.successes,
			SoftFailures: acc.softFailures,
			HardFailures: acc.hardFailures,
			Latencies:    append([]time.Duration(nil), acc.latencies...),
		}
	}
	for reason, count := range c.reasons {
		snap.Reasons[reason] = count
	}

	c.mu.Unlock()

	sort.Slice(snap.Latencies, func(i, j int) bool { return snap.Latencies[i] < snap.Latencies[j] })
	for _, op := range snap.Ops {
		lat := op.Latencies
		sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
	}
	return snap
}

// OpCount holds live per-operation counters for display.
type OpCount struct {
	Successes    int64
	SoftFailures int64
	HardFailures int64
}

// Total returns the number of outcomes recorded for the operation.
func (o OpCount) Total() int64 {
	return o.Successes + o.SoftFailures + o.HardFailures
}

// Stats is a cheap live view of the run for the progress line and dashboard.
// Its percentiles come from a bounded histogram and are approximate; final
// results must be computed from a [Snapshot].
type Stats struct {
	Total        int64
	Successes    int64
	SoftFailures int64
	HardFailures int64

	// RequestsPerSec counts all outcomes, failures included; the summary's
	// rps counts successes only, so the two can disagree at run end.
	RequestsPerSec float64
	SuccessRate    float64

	MinLatency  time.Duration
	MaxLatency  time.Duration
	MeanLatency time.Duration
	P50Latency  time.Duration
	P95Latency  time.Duration
	P99Latency  time.Duration

	Elapsed time.Duration

	Ops     map[string]OpCount
	Reasons []ReasonCount
}

// Stats computes live statistics over the given elapsed run time without
// copying the sample list.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.softFailures + c.hardFailures
	stats := Stats{
		Total:        total,
		Successes:    c.successes,
		SoftFailures: c.softFailures,
		HardFailures: c.hardFailures,
		MinLatency:   c.minLatency,
		MaxLatency:   c.maxLatency,
		Elapsed:      elapsed,
		Ops:          make(map[string]OpCount, len(c.perOp)),
	}
	if c.hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P95Latency = time.Duration(c.hist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	if n := int64(len(c.latencies)); n > 0 {
		stats.MeanLatency = c.sumLatency / time.Duration(n)
	}
	if elapsed > 0 {
		stats.RequestsPerSec = float64(total) / elapsed.Seconds()
	}
	if total > 0 {
		stats.SuccessRate = float64(c.successes) / float64(total)
	}
	for op, acc := range c.perOp {
		stats.Ops[op] = OpCount{
			Successes:    acc.successes,
			SoftFailures: acc.softFailures,
			HardFailures: acc.hardFailures,
		}
	}
	stats.Reasons = SortReasons(c.reasons)
	return stats
}
