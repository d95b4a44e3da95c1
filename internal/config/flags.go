package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "loadbench",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set. Defaults here
// mirror the Loader's built-in defaults; only changed flags override the
// config file.
func configureFlags(flags *pflag.FlagSet) {
	// Target
	flags.String("target", "http://localhost:5100", "Base URL of the target service")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.String("auth-token", "", "Bearer token added to every request")

	// Load shape
	flags.IntP("concurrency", "c", 50, "Number of concurrent workers")
	flags.DurationP("duration", "d", 60*time.Second, "How long to run the benchmark (e.g. 30s, 5m)")
	flags.IntP("rate", "r", 0, "Aggregate request rate cap in requests/second (0 means unpaced)")
	flags.String("arrival-model", string(ArrivalModelUniform), "Spacing of paced requests (uniform or poisson)")
	flags.Int64("seed", 0, "Random seed for workload synthesis (0 derives one from the clock)")
	flags.Duration("think-min", 10*time.Millisecond, "Minimum idle time between a worker's operations")
	flags.Duration("think-max", 50*time.Millisecond, "Maximum idle time between a worker's operations")

	// Per-attempt behavior
	flags.Duration("timeout", 5*time.Second, "Per-attempt request timeout")
	flags.Int("retries", 2, "Retries per operation after the first attempt")
	flags.Duration("backoff-base", 100*time.Millisecond, "Base delay for exponential retry backoff")

	// Operation mix
	flags.Int("mix-transaction", 3, "Weight of the transaction write operation")
	flags.Int("mix-round", 1, "Weight of the round retrieval operation")
	flags.Int("mix-health", 1, "Weight of the health check operation")
	flags.Float64("amount-min", 1, "Minimum synthesized transaction amount")
	flags.Float64("amount-max", 100, "Maximum synthesized transaction amount")

	// Response classification
	flags.String("success-path", "success", "JSON field holding the boolean success flag on 2xx responses")
	flags.String("reason-path", "error", "JSON field holding the target's failure reason")

	// Report
	flags.Duration("target-p95", 20*time.Millisecond, "P95 latency the summary's meets_target flag is judged against")
	flags.String("summary", "benchmark_summary.json", "Path of the JSON summary artifact")
	flags.String("format", string(FormatText), "Final report format: 'text' or 'json'")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-failures", false, "Log each failed operation to stderr")
	flags.Int("warmup", 3, "Best-effort health probes before the run starts (0 disables)")
	flags.StringSlice("threshold", nil, "Performance threshold (repeatable, e.g. 'latency:p95 < 20')")

	// Feeder flags
	flags.String("feeder-path", "", "Path to CSV or JSON file supplying round/player records")
	flags.String("feeder-type", "", "Type of feeder file: 'csv' or 'json' (default: by file extension)")

	// Tracing flags
	flags.Bool("trace", false, "Export one OTLP span per logical operation")
	flags.String("trace-endpoint", "", "OTLP collector endpoint (host:port); empty uses the exporter default")
	flags.String("trace-protocol", "http", "OTLP transport: 'http' or 'grpc'")
	flags.String("trace-service", "loadbench", "service.name reported on exported spans")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")

	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("auth-token") {
		val, err := fs.GetString("auth-token")
		if err != nil {
			return err
		}
		cfg.AuthToken = strings.TrimSpace(val)
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("arrival-model") {
		val, err := fs.GetString("arrival-model")
		if err != nil {
			return err
		}
		cfg.Arrival.Model = ArrivalModel(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("seed") {
		val, err := fs.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = val
	}
	if fs.Changed("think-min") {
		val, err := fs.GetDuration("think-min")
		if err != nil {
			return err
		}
		cfg.Think.Min = val
	}
	if fs.Changed("think-max") {
		val, err := fs.GetDuration("think-max")
		if err != nil {
			return err
		}
		cfg.Think.Max = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("retries") {
		val, err := fs.GetInt("retries")
		if err != nil {
			return err
		}
		cfg.Retries = val
	}
	if fs.Changed("backoff-base") {
		val, err := fs.GetDuration("backoff-base")
		if err != nil {
			return err
		}
		cfg.BackoffBase = val
	}
	if fs.Changed("mix-transaction") {
		val, err := fs.GetInt("mix-transaction")
		if err != nil {
			return err
		}
		cfg.Mix.Transaction = val
	}
	if fs.Changed("mix-round") {
		val, err := fs.GetInt("mix-round")
		if err != nil {
			return err
		}
		cfg.Mix.Round = val
	}
	if fs.Changed("mix-health") {
		val, err := fs.GetInt("mix-health")
		if err != nil {
			return err
		}
		cfg.Mix.Health = val
	}
	if fs.Changed("amount-min") {
		val, err := fs.GetFloat64("amount-min")
		if err != nil {
			return err
		}
		cfg.Amount.Min = val
	}
	if fs.Changed("amount-max") {
		val, err := fs.GetFloat64("amount-max")
		if err != nil {
			return err
		}
		cfg.Amount.Max = val
	}
	if fs.Changed("success-path") {
		val, err := fs.GetString("success-path")
		if err != nil {
			return err
		}
		cfg.Response.SuccessPath = strings.TrimSpace(val)
	}
	if fs.Changed("reason-path") {
		val, err := fs.GetString("reason-path")
		if err != nil {
			return err
		}
		cfg.Response.ReasonPath = strings.TrimSpace(val)
	}
	if fs.Changed("target-p95") {
		val, err := fs.GetDuration("target-p95")
		if err != nil {
			return err
		}
		cfg.TargetP95 = val
	}
	if fs.Changed("summary") {
		val, err := fs.GetString("summary")
		if err != nil {
			return err
		}
		cfg.SummaryPath = strings.TrimSpace(val)
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = ReportFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-failures") {
		val, err := fs.GetBool("log-failures")
		if err != nil {
			return err
		}
		cfg.LogFailures = val
	}
	if fs.Changed("warmup") {
		val, err := fs.GetInt("warmup")
		if err != nil {
			return err
		}
		cfg.Warmup = val
	}
	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}

	vals, err := fs.GetStringSlice("header")
	if err != nil {
		return err
	}
	if len(vals) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			parts := strings.SplitN(entry, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("header must be in key=value format: %s", entry)
			}
			key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
			if key == "" {
				return fmt.Errorf("header key cannot be empty")
			}
			cfg.Headers[key] = strings.TrimSpace(parts[1])
		}
	}

	if fs.Changed("feeder-path") {
		val, err := fs.GetString("feeder-path")
		if err != nil {
			return err
		}
		cfg.Feeder.Path = strings.TrimSpace(val)
	}
	if fs.Changed("feeder-type") {
		val, err := fs.GetString("feeder-type")
		if err != nil {
			return err
		}
		cfg.Feeder.Type = strings.ToLower(strings.TrimSpace(val))
	}

	if fs.Changed("trace") {
		val, err := fs.GetBool("trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Enabled = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-service") {
		val, err := fs.GetString("trace-service")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}

	return nil
}
