package report

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			elapsed := time.Since(p.start)
			stats := p.collector.Stats(elapsed)
			line := fmt.Sprintf("\rRequests: %d | Success: %d | Soft: %d | Hard: %d | RPS: %.1f | P95: %s",
				stats.Total, stats.Successes, stats.SoftFailures, stats.HardFailures,
				stats.RequestsPerSec, stats.P95Latency)
			if len(stats.Reasons) > 0 {
				top := stats.Reasons[0]
				line += fmt.Sprintf(" | Top Failure: %s (%d)", top.Reason, top.Count)
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}
