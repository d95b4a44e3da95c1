package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		input interface{}
		want  string
	}{
		{"hello", "hello"},
		{123, "123"},
		{true, "true"},
		{nil, ""},
		{[]byte("bytes"), "bytes"},
	}

	for _, tt := range tests {
		got, err := asString(tt.input)
		if err != nil {
			t.Errorf("asString(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		input interface{}
		want  int
	}{
		{123, 123},
		{"456", 456},
		{int64(789), 789},
		{float64(10.0), 10},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asInt(tt.input)
		if err != nil {
			t.Errorf("asInt(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAsFloat64(t *testing.T) {
	tests := []struct {
		input interface{}
		want  float64
	}{
		{1.5, 1.5},
		{float32(2), 2},
		{7, 7},
		{"0.25", 0.25},
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asFloat64(tt.input)
		if err != nil {
			t.Errorf("asFloat64(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asFloat64(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		input interface{}
		want  bool
	}{
		{true, true},
		{"true", true},
		{"1", true},
		{false, false},
		{"false", false},
		{"0", false},
		{nil, false},
	}

	for _, tt := range tests {
		got, err := asBool(tt.input)
		if err != nil {
			t.Errorf("asBool(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAsDuration(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{time.Second, time.Second},
		{"1m", time.Minute},
		{10, 10 * time.Second}, // int treated as seconds
		{nil, 0},
	}

	for _, tt := range tests {
		got, err := asDuration(tt.input)
		if err != nil {
			t.Errorf("asDuration(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestApplyConfigSettings(t *testing.T) {
	cfg := &Config{
		Think: ThinkConfig{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond},
		Mix:   MixConfig{Transaction: 3, Round: 1, Health: 1},
	}
	settings := map[string]interface{}{
		"target":      "http://example.com",
		"concurrency": 10,
		"timeout":     "5s",
		"headers": map[string]interface{}{
			"Content-Type": "application/json",
		},
		"think": map[string]interface{}{
			"max": "200ms",
		},
		"mix": map[string]interface{}{
			"transaction": 5,
		},
		"response": map[string]interface{}{
			"success_path": "ok",
		},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		t.Fatalf("applyConfigSettings() error = %v", err)
	}

	if cfg.TargetURL != "http://example.com" {
		t.Errorf("TargetURL = %q, want http://example.com", cfg.TargetURL)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Headers["Content-Type"] != "application/json" {
		t.Errorf("Headers[Content-Type] = %q, want application/json", cfg.Headers["Content-Type"])
	}
	// Sub-sections override only the keys they name.
	if cfg.Think.Min != 10*time.Millisecond || cfg.Think.Max != 200*time.Millisecond {
		t.Errorf("Think = %+v, want min kept and max overridden", cfg.Think)
	}
	if cfg.Mix.Transaction != 5 || cfg.Mix.Round != 1 || cfg.Mix.Health != 1 {
		t.Errorf("Mix = %+v, want 5/1/1", cfg.Mix)
	}
	if cfg.Response.SuccessPath != "ok" {
		t.Errorf("Response.SuccessPath = %q, want ok", cfg.Response.SuccessPath)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := &Config{
		Concurrency: 50,
		Retries:     2,
		Think:       ThinkConfig{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond},
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	configureFlags(fs)

	args := []string{
		"--concurrency=5",
		"--retries=0",
		"--think-max=100ms",
		"--header=X-Test=123",
		"--trace",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		t.Fatalf("applyFlagOverrides() error = %v", err)
	}

	if cfg.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.Retries)
	}
	if cfg.Think.Min != 10*time.Millisecond || cfg.Think.Max != 100*time.Millisecond {
		t.Errorf("Think = %+v, want min kept and max overridden", cfg.Think)
	}
	if cfg.Headers["X-Test"] != "123" {
		t.Errorf("Headers[X-Test] = %q, want 123", cfg.Headers["X-Test"])
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled = false, want true")
	}
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()
	args := []string{
		"--target=http://example.com",
		"--concurrency=2",
	}

	cfg, err := loader.Load(args)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetURL != "http://example.com" {
		t.Errorf("TargetURL = %q, want http://example.com", cfg.TargetURL)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
}

func TestParseArrival(t *testing.T) {
	got, err := parseArrival("Poisson")
	if err != nil {
		t.Fatalf("parseArrival(string) error = %v", err)
	}
	if got.Model != ArrivalModelPoisson {
		t.Errorf("Model = %q, want poisson", got.Model)
	}

	got, err = parseArrival(map[string]interface{}{"model": "uniform"})
	if err != nil {
		t.Fatalf("parseArrival(map) error = %v", err)
	}
	if got.Model != ArrivalModelUniform {
		t.Errorf("Model = %q, want uniform", got.Model)
	}

	if _, err := parseArrival(map[string]interface{}{"mode": "uniform"}); err == nil {
		t.Error("parseArrival(map without model) expected error")
	}
}

func TestParseTracingPartial(t *testing.T) {
	base := TracingConfig{Protocol: "http", ServiceName: "loadbench"}
	got, err := parseTracing(map[string]interface{}{"enabled": true}, base)
	if err != nil {
		t.Fatalf("parseTracing() error = %v", err)
	}
	if !got.Enabled {
		t.Error("Enabled = false, want true")
	}
	if got.Protocol != "http" || got.ServiceName != "loadbench" {
		t.Errorf("defaults lost: %+v", got)
	}
}
