package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

// Requester abstracts executing a single request attempt.
// Implementations should return an error for failed requests.
type Requester interface {
	Do(ctx context.Context) error
}

// Operation is one kind of logical operation a worker can issue, with the
// weight it carries in the traffic mix.
type Operation struct {
	Name      string
	Weight    int
	Requester Requester
}

// Workload builds the operation set for one worker. It is called once per
// worker at startup, so implementations may allocate per-worker state
// (sessions, payload generators) that the returned requesters close over
// without any locking.
type Workload func(worker int) []Operation

// Think bounds the randomized idle time between a worker's iterations.
// A zero Max disables think time.
type Think struct {
	Min time.Duration
	Max time.Duration
}

// ArrivalModel selects how request starts are spaced when a rate cap is set.
type ArrivalModel string

const (
	// ArrivalModelUniform spaces requests at fixed intervals.
	ArrivalModelUniform ArrivalModel = "uniform"
	// ArrivalModelPoisson samples exponential inter-arrival times for
	// bursty, open-loop style traffic.
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Options configure the Runner.
type Options struct {
	Concurrency   int                // number of worker goroutines
	Duration      time.Duration      // run length; the deadline is start + Duration
	Think         Think              // idle time between iterations
	Retry         RetryPolicy        // per-operation retry policy
	RatePerSecond int                // aggregate request rate cap (0 means unlimited)
	ArrivalModel  ArrivalModel       // pacing model when a rate cap is set
	RandomSeed    int64              // seed for think time and mix selection (0 means time-based)
	Workload      Workload           // per-worker operation sets (required)
	Collector     *metrics.Collector // outcome sink; one is created if nil

	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
	PoissonSampler func() float64              // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Duration <= 0 {
		o.Duration = time.Second
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.ArrivalModel == "" {
		o.ArrivalModel = ArrivalModelUniform
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = time.Now().UnixNano()
	}
	if o.Retry.MaxAttempts < 1 {
		o.Retry.MaxAttempts = 1
	}
	if o.Collector == nil {
		o.Collector = metrics.NewCollector()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
