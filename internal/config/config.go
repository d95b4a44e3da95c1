package config

import (
	"fmt"
	"strings"
	"time"
)

// ReportFormat selects how the final report is rendered.
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
)

// ArrivalModel selects how paced requests are spaced when a rate cap is set.
type ArrivalModel string

const (
	ArrivalModelUniform ArrivalModel = "uniform"
	ArrivalModelPoisson ArrivalModel = "poisson"
)

// Config holds every run parameter. It is assembled once by the Loader and
// immutable for the lifetime of a run.
type Config struct {
	TargetURL   string        `mapstructure:"target"`
	Concurrency int           `mapstructure:"concurrency"`
	Duration    time.Duration `mapstructure:"duration"`
	Rate        int           `mapstructure:"rate"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	Seed        int64         `mapstructure:"seed"`
	Arrival     ArrivalConfig `mapstructure:"arrival"`

	Think  ThinkConfig  `mapstructure:"think"`
	Amount AmountConfig `mapstructure:"amount"`
	Mix    MixConfig    `mapstructure:"mix"`

	Headers   map[string]string `mapstructure:"headers"`
	AuthToken string            `mapstructure:"auth_token"`
	Paths     PathConfig        `mapstructure:"paths"`
	Response  ResponseConfig    `mapstructure:"response"`

	TargetP95   time.Duration `mapstructure:"target_p95"`
	SummaryPath string        `mapstructure:"summary"`
	Format      ReportFormat  `mapstructure:"format"`
	Dashboard   bool          `mapstructure:"dashboard"`
	LogFailures bool          `mapstructure:"log_failures"`
	Warmup      int           `mapstructure:"warmup"`
	Thresholds  []string      `mapstructure:"thresholds"`

	Feeder  FeederConfig  `mapstructure:"feeder"`
	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

type ArrivalConfig struct {
	Model ArrivalModel `mapstructure:"model"`
}

// ThinkConfig bounds the randomized idle time between a worker's iterations.
type ThinkConfig struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

// AmountConfig bounds the randomized transaction amount.
type AmountConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// MixConfig weights the three operation kinds. A worker picks one operation
// per iteration with probability proportional to its weight.
type MixConfig struct {
	Transaction int `mapstructure:"transaction"`
	Round       int `mapstructure:"round"`
	Health      int `mapstructure:"health"`
}

// PathConfig overrides the target's endpoint paths. Round is a prefix; the
// round ID is appended to it.
type PathConfig struct {
	Transaction string `mapstructure:"transaction"`
	Round       string `mapstructure:"round"`
	Health      string `mapstructure:"health"`
}

// ResponseConfig names the JSON fields consulted when classifying responses.
type ResponseConfig struct {
	SuccessPath string `mapstructure:"success_path"`
	ReasonPath  string `mapstructure:"reason_path"`
}

type FeederConfig struct {
	Path string `mapstructure:"path"`
	Type string `mapstructure:"type"` // "csv" or "json"; empty selects by file extension
}

// TracingConfig enables OTLP span export for each logical operation.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	Protocol    string `mapstructure:"protocol"` // "http" or "grpc"
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// ValidationError accumulates every invalid setting found in one pass so the
// operator can fix them all at once.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the whole configuration and reports every issue at once.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Retries < 0 {
		issues = append(issues, "retries must be >= 0")
	}
	if c.BackoffBase < 0 {
		issues = append(issues, "backoff_base must be >= 0")
	}
	if c.TargetP95 < 0 {
		issues = append(issues, "target_p95 must be >= 0")
	}
	if c.Warmup < 0 {
		issues = append(issues, "warmup must be >= 0")
	}
	if strings.TrimSpace(c.SummaryPath) == "" {
		issues = append(issues, "summary path is required")
	}
	if c.Dashboard && c.Format == FormatJSON {
		issues = append(issues, "dashboard and json format are mutually exclusive")
	}

	issues = append(issues, validateFormat(c.Format)...)
	issues = append(issues, validateArrivalConfig(c.Arrival)...)
	issues = append(issues, validateThinkConfig(c.Think)...)
	issues = append(issues, validateAmountConfig(c.Amount)...)
	issues = append(issues, validateMixConfig(c.Mix)...)
	issues = append(issues, validateFeederConfig(c.Feeder)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateFormat(format ReportFormat) []string {
	switch format {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return []string{fmt.Sprintf("format must be 'text' or 'json', got %q", format)}
	}
}

func validateArrivalConfig(arr ArrivalConfig) []string {
	model := arr.Model
	if model == "" {
		model = ArrivalModelUniform
	}
	switch model {
	case ArrivalModelUniform, ArrivalModelPoisson:
		return nil
	default:
		return []string{fmt.Sprintf("arrival model %q is not supported", model)}
	}
}

func validateThinkConfig(think ThinkConfig) []string {
	var issues []string
	if think.Min < 0 {
		issues = append(issues, "think.min must be >= 0")
	}
	if think.Max < think.Min {
		issues = append(issues, "think.max must be >= think.min")
	}
	return issues
}

func validateAmountConfig(amount AmountConfig) []string {
	var issues []string
	if amount.Min <= 0 {
		issues = append(issues, "amount.min must be > 0")
	}
	if amount.Max < amount.Min {
		issues = append(issues, "amount.max must be >= amount.min")
	}
	return issues
}

func validateMixConfig(mix MixConfig) []string {
	var issues []string
	if mix.Transaction < 0 || mix.Round < 0 || mix.Health < 0 {
		issues = append(issues, "mix weights must be >= 0")
	}
	if mix.Transaction+mix.Round+mix.Health <= 0 {
		issues = append(issues, "mix: at least one operation weight must be positive")
	}
	return issues
}

func validateFeederConfig(feeder FeederConfig) []string {
	if strings.TrimSpace(feeder.Path) == "" {
		return nil // No feeder configured
	}

	switch strings.TrimSpace(feeder.Type) {
	case "", "csv", "json":
		return nil
	default:
		return []string{fmt.Sprintf("feeder: type must be 'csv' or 'json', got %q", feeder.Type)}
	}
}

func validateTracingConfig(tracing TracingConfig) []string {
	if !tracing.Enabled {
		return nil
	}
	switch tracing.Protocol {
	case "", "http", "grpc":
		return nil
	default:
		return []string{fmt.Sprintf("tracing: protocol must be 'http' or 'grpc', got %q", tracing.Protocol)}
	}
}
