package runner

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type arrivalController interface {
	Wait(ctx context.Context) error
}

// newArrivalController builds the pacing controller for the configured rate
// cap. It returns nil when issuance is unpaced.
func newArrivalController(opt Options) arrivalController {
	if opt.RatePerSecond <= 0 {
		return nil
	}

	switch opt.ArrivalModel {
	case ArrivalModelPoisson:
		sampler := opt.PoissonSampler
		if sampler == nil {
			seeded := rand.New(rand.NewSource(opt.RandomSeed))
			sampler = seeded.ExpFloat64
		}
		// Workers wait independently, so each samples its share of the
		// aggregate rate.
		perWorker := float64(opt.RatePerSecond) / float64(opt.Concurrency)
		return &poissonArrival{rate: perWorker, sample: sampler}
	default:
		return &uniformArrival{limiter: opt.LimiterFactory(opt.RatePerSecond)}
	}
}

// uniformArrival delegates pacing to a rate.Limiter (uniform spacing). The
// limiter is shared by all workers, which keeps the cap aggregate.
type uniformArrival struct {
	limiter *rate.Limiter
}

func (u *uniformArrival) Wait(ctx context.Context) error {
	if u == nil || u.limiter == nil {
		return nil
	}
	return u.limiter.Wait(ctx)
}

// poissonArrival samples exponential inter-arrival times to approximate a
// Poisson process.
type poissonArrival struct {
	mu     sync.Mutex
	rate   float64
	sample func() float64
}

func (p *poissonArrival) Wait(ctx context.Context) error {
	delay := p.nextDelay()
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *poissonArrival) nextDelay() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rate <= 0 || p.sample == nil {
		return 0
	}

	value := p.sample()
	delay := float64(time.Second) * value / p.rate
	if delay > math.MaxInt64 {
		delay = math.MaxInt64
	}
	return time.Duration(delay)
}
