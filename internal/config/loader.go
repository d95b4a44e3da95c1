package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Precedence, lowest to highest: built-in defaults, config file,
// changed flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		TargetURL:   "http://localhost:5100",
		Concurrency: 50,
		Duration:    60 * time.Second,
		Timeout:     5 * time.Second,
		Retries:     2,
		BackoffBase: 100 * time.Millisecond,
		Headers:     map[string]string{},
		Arrival:     ArrivalConfig{Model: ArrivalModelUniform},
		Think:       ThinkConfig{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond},
		Amount:      AmountConfig{Min: 1, Max: 100},
		Mix:         MixConfig{Transaction: 3, Round: 1, Health: 1},
		Response:    ResponseConfig{SuccessPath: "success", ReasonPath: "error"},
		TargetP95:   20 * time.Millisecond,
		SummaryPath: "benchmark_summary.json",
		Format:      FormatText,
		Warmup:      3,
		Tracing:     TracingConfig{Protocol: "http", ServiceName: "loadbench"},
		ConfigFile:  configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	// Fallback to environment variable if auth_token is empty
	if cfg.AuthToken == "" {
		if envToken := os.Getenv("LOADBENCH_AUTH_TOKEN"); envToken != "" {
			cfg.AuthToken = envToken
		}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "retries"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("retries: %w", err)
		}
		cfg.Retries = val
	}

	if raw, ok := lookupSetting(settings, "backoffbase", "backoff_base", "backoff-base"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("backoffBase: %w", err)
		}
		cfg.BackoffBase = dur
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = int64(val)
	}

	if raw, ok := lookupSetting(settings, "arrival"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	} else if raw, ok := lookupSetting(settings, "arrivalmodel", "arrival_model", "arrival-model"); ok {
		arrival, err := parseArrival(raw)
		if err != nil {
			return fmt.Errorf("arrivalModel: %w", err)
		}
		if arrival.Model != "" {
			cfg.Arrival = arrival
		}
	}

	if raw, ok := lookupSetting(settings, "think"); ok {
		think, err := parseThink(raw, cfg.Think)
		if err != nil {
			return fmt.Errorf("think: %w", err)
		}
		cfg.Think = think
	}

	if raw, ok := lookupSetting(settings, "amount"); ok {
		amount, err := parseAmount(raw, cfg.Amount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		cfg.Amount = amount
	}

	if raw, ok := lookupSetting(settings, "mix"); ok {
		mix, err := parseMix(raw, cfg.Mix)
		if err != nil {
			return fmt.Errorf("mix: %w", err)
		}
		cfg.Mix = mix
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if raw, ok := lookupSetting(settings, "authtoken", "auth_token", "auth-token"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("authToken: %w", err)
		}
		cfg.AuthToken = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "paths"); ok {
		paths, err := parsePaths(raw, cfg.Paths)
		if err != nil {
			return fmt.Errorf("paths: %w", err)
		}
		cfg.Paths = paths
	}

	if raw, ok := lookupSetting(settings, "response"); ok {
		response, err := parseResponse(raw, cfg.Response)
		if err != nil {
			return fmt.Errorf("response: %w", err)
		}
		cfg.Response = response
	}

	if raw, ok := lookupSetting(settings, "targetp95", "target_p95", "target-p95"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("targetP95: %w", err)
		}
		cfg.TargetP95 = dur
	}

	if raw, ok := lookupSetting(settings, "summary"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		cfg.SummaryPath = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		if val != "" {
			cfg.Format = ReportFormat(strings.ToLower(strings.TrimSpace(val)))
		}
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "logfailures", "log_failures", "log-failures"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logFailures: %w", err)
		}
		cfg.LogFailures = val
	}

	if raw, ok := lookupSetting(settings, "warmup"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
		cfg.Warmup = val
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		thresholds, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = thresholds
	}

	if raw, ok := lookupSetting(settings, "feeder"); ok {
		feeder, err := parseFeeder(raw)
		if err != nil {
			return fmt.Errorf("feeder: %w", err)
		}
		cfg.Feeder = feeder
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseArrival(value interface{}) (ArrivalConfig, error) {
	if value == nil {
		return ArrivalConfig{}, nil
	}
	switch v := value.(type) {
	case string:
		model := strings.ToLower(strings.TrimSpace(v))
		if model == "" {
			return ArrivalConfig{}, nil
		}
		return ArrivalConfig{Model: ArrivalModel(model)}, nil
	default:
		entry, err := toStringKeyMap(value)
		if err != nil {
			return ArrivalConfig{}, err
		}
		if raw, ok := lookupSetting(entry, "model"); ok {
			val, err := asString(raw)
			if err != nil {
				return ArrivalConfig{}, fmt.Errorf("model: %w", err)
			}
			return ArrivalConfig{Model: ArrivalModel(strings.ToLower(strings.TrimSpace(val)))}, nil
		}
		return ArrivalConfig{}, fmt.Errorf("model field is required")
	}
}

// parseThink overrides only the keys present, keeping the base for the rest.
func parseThink(value interface{}, base ThinkConfig) (ThinkConfig, error) {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return ThinkConfig{}, err
	}
	think := base
	if raw, ok := lookupSetting(entry, "min"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return ThinkConfig{}, fmt.Errorf("min: %w", err)
		}
		think.Min = dur
	}
	if raw, ok := lookupSetting(entry, "max"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return ThinkConfig{}, fmt.Errorf("max: %w", err)
		}
		think.Max = dur
	}
	return think, nil
}

func parseAmount(value interface{}, base AmountConfig) (AmountConfig, error) {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return AmountConfig{}, err
	}
	amount := base
	if raw, ok := lookupSetting(entry, "min"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return AmountConfig{}, fmt.Errorf("min: %w", err)
		}
		amount.Min = val
	}
	if raw, ok := lookupSetting(entry, "max"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return AmountConfig{}, fmt.Errorf("max: %w", err)
		}
		amount.Max = val
	}
	return amount, nil
}

func parseMix(value interface{}, base MixConfig) (MixConfig, error) {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return MixConfig{}, err
	}
	mix := base
	if raw, ok := lookupSetting(entry, "transaction"); ok {
		val, err := asInt(raw)
		if err != nil {
			return MixConfig{}, fmt.Errorf("transaction: %w", err)
		}
		mix.Transaction = val
	}
	if raw, ok := lookupSetting(entry, "round"); ok {
		val, err := asInt(raw)
		if err != nil {
			return MixConfig{}, fmt.Errorf("round: %w", err)
		}
		mix.Round = val
	}
	if raw, ok := lookupSetting(entry, "health"); ok {
		val, err := asInt(raw)
		if err != nil {
			return MixConfig{}, fmt.Errorf("health: %w", err)
		}
		mix.Health = val
	}
	return mix, nil
}

func parsePaths(value interface{}, base PathConfig) (PathConfig, error) {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return PathConfig{}, err
	}
	paths := base
	if raw, ok := lookupSetting(entry, "transaction"); ok {
		val, err := asString(raw)
		if err != nil {
			return PathConfig{}, fmt.Errorf("transaction: %w", err)
		}
		paths.Transaction = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "round"); ok {
		val, err := asString(raw)
		if err != nil {
			return PathConfig{}, fmt.Errorf("round: %w", err)
		}
		paths.Round = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "health"); ok {
		val, err := asString(raw)
		if err != nil {
			return PathConfig{}, fmt.Errorf("health: %w", err)
		}
		paths.Health = strings.TrimSpace(val)
	}
	return paths, nil
}

func parseResponse(value interface{}, base ResponseConfig) (ResponseConfig, error) {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return ResponseConfig{}, err
	}
	response := base
	if raw, ok := lookupSetting(entry, "successpath", "success_path", "success-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return ResponseConfig{}, fmt.Errorf("success_path: %w", err)
		}
		response.SuccessPath = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "reasonpath", "reason_path", "reason-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return ResponseConfig{}, fmt.Errorf("reason_path: %w", err)
		}
		response.ReasonPath = strings.TrimSpace(val)
	}
	return response, nil
}

func parseFeeder(value interface{}) (FeederConfig, error) {
	if value == nil {
		return FeederConfig{}, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return FeederConfig{}, err
	}
	var feeder FeederConfig
	if raw, ok := lookupSetting(entry, "path"); ok {
		val, err := asString(raw)
		if err != nil {
			return FeederConfig{}, fmt.Errorf("path: %w", err)
		}
		feeder.Path = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "type"); ok {
		val, err := asString(raw)
		if err != nil {
			return FeederConfig{}, fmt.Errorf("type: %w", err)
		}
		feeder.Type = strings.ToLower(strings.TrimSpace(val))
	}
	return feeder, nil
}

func parseTracing(value interface{}, base TracingConfig) (TracingConfig, error) {
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	tracing := base
	if raw, ok := lookupSetting(entry, "enabled"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("enabled: %w", err)
		}
		tracing.Enabled = val
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		if val != "" {
			tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
		}
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		if val != "" {
			tracing.ServiceName = strings.TrimSpace(val)
		}
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	return tracing, nil
}
