package runner

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

// Result captures execution totals for one run.
type Result struct {
	Total    int64
	Duration time.Duration
}

// Runner drives a fixed pool of workers against a wall-clock deadline.
type Runner struct {
	opt     Options
	arrival arrivalController
	exec    *Executor
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{
		opt:     opt,
		arrival: newArrivalController(opt),
		exec:    NewExecutor(opt.Retry),
	}
}

// Collector returns the collector that run outcomes are recorded into.
func (r *Runner) Collector() *metrics.Collector {
	return r.opt.Collector
}

// Run spawns the configured number of workers and blocks until all of them
// have finished. Workers stop starting new operations once the deadline
// passes; an operation already in flight is allowed to finish, so Run may
// return slightly after start + Duration. Cancelling ctx aborts the run
// early.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	deadline := start.Add(r.opt.Duration)

	var total int64
	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func(id int) {
			defer wg.Done()
			r.newWorker(id, deadline).run(ctx, &total)
		}(i)
	}
	wg.Wait()

	return Result{
		Total:    atomic.LoadInt64(&total),
		Duration: time.Since(start),
	}
}

// worker owns one sequential operation loop. Everything it touches besides
// the collector is worker-local, so the loop runs lock-free.
type worker struct {
	id        int
	ops       []Operation
	cum       []int
	weightSum int
	rng       *rand.Rand
	think     Think
	deadline  time.Time
	exec      *Executor
	arrival   arrivalController
	collector *metrics.Collector
}

func (r *Runner) newWorker(id int, deadline time.Time) *worker {
	var ops []Operation
	if r.opt.Workload != nil {
		ops = r.opt.Workload(id)
	}

	w := &worker{
		id:        id,
		ops:       ops,
		rng:       rand.New(rand.NewSource(r.opt.RandomSeed + int64(id)*7919)),
		think:     r.opt.Think,
		deadline:  deadline,
		exec:      r.exec,
		arrival:   r.arrival,
		collector: r.opt.Collector,
	}

	w.cum = make([]int, len(ops))
	sum := 0
	for i, op := range ops {
		weight := op.Weight
		if weight < 1 {
			weight = 1
		}
		sum += weight
		w.cum[i] = sum
	}
	w.weightSum = sum
	return w
}

func (w *worker) run(ctx context.Context, total *int64) {
	if len(w.ops) == 0 {
		return
	}

	for time.Now().Before(w.deadline) {
		if ctx.Err() != nil {
			return
		}
		if w.arrival != nil {
			if err := w.arrival.Wait(ctx); err != nil {
				return
			}
			if !time.Now().Before(w.deadline) {
				return
			}
		}

		out := w.exec.Execute(ctx, w.pick(), w.deadline)
		if ctx.Err() != nil && out.Class == metrics.HardFailure && out.Reason == "canceled" {
			// Run aborted mid-operation; drop the partial outcome.
			return
		}
		w.collector.Observe(out)
		atomic.AddInt64(total, 1)

		if !w.idle(ctx) {
			return
		}
	}
}

// pick selects the next operation by weighted random choice, so the traffic
// mix approximates the configured ratio without a round-robin guarantee.
func (w *worker) pick() Operation {
	if len(w.ops) == 1 {
		return w.ops[0]
	}
	n := w.rng.Intn(w.weightSum)
	for i, bound := range w.cum {
		if n < bound {
			return w.ops[i]
		}
	}
	return w.ops[len(w.ops)-1]
}

// idle sleeps the randomized think time, truncated at the deadline. It
// reports whether the worker should continue.
func (w *worker) idle(ctx context.Context) bool {
	delay := w.thinkDelay()
	if delay <= 0 {
		return true
	}
	remaining := time.Until(w.deadline)
	if remaining <= 0 {
		return false
	}
	if delay > remaining {
		delay = remaining
	}

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *worker) thinkDelay() time.Duration {
	if w.think.Max <= 0 {
		return 0
	}
	if w.think.Max <= w.think.Min {
		return w.think.Min
	}
	return w.think.Min + time.Duration(w.rng.Int63n(int64(w.think.Max-w.think.Min)))
}
