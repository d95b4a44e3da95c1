package runner

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Options
		validate func(*testing.T, Options)
	}{
		{
			name:  "defaults",
			input: Options{},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.Duration != time.Second {
					t.Errorf("Duration = %v, want 1s", o.Duration)
				}
				if o.ArrivalModel != ArrivalModelUniform {
					t.Errorf("ArrivalModel = %q, want %q", o.ArrivalModel, ArrivalModelUniform)
				}
				if o.RandomSeed == 0 {
					t.Error("RandomSeed should be non-zero")
				}
				if o.Retry.MaxAttempts != 1 {
					t.Errorf("Retry.MaxAttempts = %d, want 1", o.Retry.MaxAttempts)
				}
				if o.Collector == nil {
					t.Error("Collector should not be nil")
				}
				if o.LimiterFactory == nil {
					t.Error("LimiterFactory should not be nil")
				}
			},
		},
		{
			name: "negative values corrected",
			input: Options{
				Concurrency:   -5,
				RatePerSecond: -1,
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 1 {
					t.Errorf("Concurrency = %d, want 1", o.Concurrency)
				}
				if o.RatePerSecond != 0 {
					t.Errorf("RatePerSecond = %d, want 0", o.RatePerSecond)
				}
			},
		},
		{
			name: "preserve valid values",
			input: Options{
				Concurrency:   10,
				Duration:      time.Minute,
				RatePerSecond: 50,
				ArrivalModel:  ArrivalModelPoisson,
				RandomSeed:    12345,
				Retry:         RetryPolicy{MaxAttempts: 4},
			},
			validate: func(t *testing.T, o Options) {
				if o.Concurrency != 10 {
					t.Errorf("Concurrency = %d, want 10", o.Concurrency)
				}
				if o.Duration != time.Minute {
					t.Errorf("Duration = %v, want 1m", o.Duration)
				}
				if o.RatePerSecond != 50 {
					t.Errorf("RatePerSecond = %d, want 50", o.RatePerSecond)
				}
				if o.ArrivalModel != ArrivalModelPoisson {
					t.Errorf("ArrivalModel = %q, want %q", o.ArrivalModel, ArrivalModelPoisson)
				}
				if o.RandomSeed != 12345 {
					t.Errorf("RandomSeed = %d, want 12345", o.RandomSeed)
				}
				if o.Retry.MaxAttempts != 4 {
					t.Errorf("Retry.MaxAttempts = %d, want 4", o.Retry.MaxAttempts)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.input
			opts.normalize()
			tt.validate(t, opts)
		})
	}
}

func TestLimiterFactory(t *testing.T) {
	opts := Options{}
	opts.normalize()

	limiter := opts.LimiterFactory(0)
	if limiter.Limit() != rate.Inf {
		t.Errorf("Limit(0) = %v, want Inf", limiter.Limit())
	}

	rps := 100
	limiter = opts.LimiterFactory(rps)
	if limiter.Limit() != rate.Limit(rps) {
		t.Errorf("Limit(%d) = %v, want %v", rps, limiter.Limit(), rate.Limit(rps))
	}
	if limiter.Burst() != rps {
		t.Errorf("Burst(%d) = %d, want %d", rps, limiter.Burst(), rps)
	}
}

func TestRetryPolicyDefaultDelayDoubles(t *testing.T) {
	policy := RetryPolicy{Delay: 100 * time.Millisecond}

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}
	for i, want := range expected {
		if got := policy.delay(i+1, nil); got != want {
			t.Errorf("delay(attempt=%d) = %v, want %v", i+1, got, want)
		}
	}
}

func TestRetryPolicyDelayFuncOverrides(t *testing.T) {
	policy := RetryPolicy{
		Delay:     time.Hour,
		DelayFunc: func(attempt int, _ error) time.Duration { return time.Duration(attempt) * time.Millisecond },
	}
	if got := policy.delay(3, nil); got != 3*time.Millisecond {
		t.Errorf("delay(3) = %v, want 3ms", got)
	}
}
