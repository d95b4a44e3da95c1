package metrics_test

import (
	"testing"
	"time"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

func TestPercentileRankSelection(t *testing.T) {
	// Ten sorted samples: 10ms, 20ms, ..., 100ms.
	sorted := make([]time.Duration, 10)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * 10 * time.Millisecond
	}

	cases := []struct {
		p    float64
		want time.Duration
	}{
		{0.0, 10 * time.Millisecond},
		{0.25, 30 * time.Millisecond},
		{0.5, 60 * time.Millisecond},
		{0.9, 100 * time.Millisecond},
		{0.95, 100 * time.Millisecond},
		{0.99, 100 * time.Millisecond},
		{1.0, 100 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := metrics.Percentile(sorted, tc.p); got != tc.want {
			t.Errorf("Percentile(p=%.2f) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := metrics.Percentile(nil, 0.95); got != 0 {
		t.Errorf("expected 0 for empty sample list, got %v", got)
	}
}

func TestPercentileSingleSample(t *testing.T) {
	sorted := []time.Duration{42 * time.Millisecond}
	for _, p := range []float64{0, 0.5, 0.95, 1.0} {
		if got := metrics.Percentile(sorted, p); got != 42*time.Millisecond {
			t.Errorf("Percentile(p=%.2f) = %v, want 42ms", p, got)
		}
	}
}

func TestPercentileMonotonic(t *testing.T) {
	sorted := make([]time.Duration, 97)
	for i := range sorted {
		sorted[i] = time.Duration(i*i) * time.Microsecond
	}

	prev := time.Duration(-1)
	for p := 0.0; p <= 1.0; p += 0.01 {
		got := metrics.Percentile(sorted, p)
		if got < prev {
			t.Fatalf("percentile not monotonic: p=%.2f gave %v after %v", p, got, prev)
		}
		prev = got
	}
}

func TestSnapshotPercentileAndMean(t *testing.T) {
	c := metrics.NewCollector()
	for _, ms := range []int{30, 10, 20} {
		c.RecordSuccess("transaction", time.Duration(ms)*time.Millisecond)
	}

	snap := c.Snapshot()
	if got := snap.Percentile(0.5); got != 20*time.Millisecond {
		t.Errorf("expected P50 20ms, got %v", got)
	}
	if got := snap.Mean(); got != 20*time.Millisecond {
		t.Errorf("expected mean 20ms, got %v", got)
	}
}

func TestSnapshotSuccessRate(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordSuccess("transaction", time.Millisecond)
	c.RecordSuccess("transaction", time.Millisecond)
	c.RecordSuccess("transaction", time.Millisecond)
	c.RecordHardFailure("transaction", "timeout")

	snap := c.Snapshot()
	if got := snap.SuccessRate(); got != 0.75 {
		t.Errorf("expected success rate 0.75, got %.2f", got)
	}

	var empty metrics.Snapshot
	if got := empty.SuccessRate(); got != 0 {
		t.Errorf("expected 0 success rate for empty snapshot, got %.2f", got)
	}
	if got := empty.Percentile(0.95); got != 0 {
		t.Errorf("expected 0 percentile for empty snapshot, got %v", got)
	}
	if got := empty.Mean(); got != 0 {
		t.Errorf("expected 0 mean for empty snapshot, got %v", got)
	}
}

func TestOpSnapshotPercentile(t *testing.T) {
	c := metrics.NewCollector()
	for i := 1; i <= 20; i++ {
		c.RecordSuccess("round", time.Duration(i)*time.Millisecond)
	}
	c.RecordSuccess("transaction", 500*time.Millisecond)

	snap := c.Snapshot()
	round := snap.Ops["round"]
	// rank int(0.95*20) = 19 -> the 20ms sample.
	if got := round.Percentile(0.95); got != 20*time.Millisecond {
		t.Errorf("expected round P95 20ms, got %v", got)
	}
	if round.SuccessRate() != 1.0 {
		t.Errorf("expected round success rate 1.0, got %.2f", round.SuccessRate())
	}
}
