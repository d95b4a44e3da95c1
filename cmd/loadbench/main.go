package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vgs-kv/loadbench/internal/config"
	"github.com/vgs-kv/loadbench/internal/dashboard"
	"github.com/vgs-kv/loadbench/internal/httpclient"
	"github.com/vgs-kv/loadbench/internal/metrics"
	"github.com/vgs-kv/loadbench/internal/report"
	"github.com/vgs-kv/loadbench/internal/runner"
	"github.com/vgs-kv/loadbench/internal/target"
	"github.com/vgs-kv/loadbench/internal/threshold"
	"github.com/vgs-kv/loadbench/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Parse thresholds up front so a typo fails before the run, not after.
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var provider *tracing.Provider
	if cfg.Tracing.Enabled {
		provider, err = tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(shutdownCtx)
		}()
	}

	client, err := target.NewClient(target.Options{
		BaseURL:         cfg.TargetURL,
		HTTPClient:      httpclient.NewClient(cfg.Timeout, cfg.Concurrency),
		SuccessPath:     cfg.Response.SuccessPath,
		ReasonPath:      cfg.Response.ReasonPath,
		TransactionPath: cfg.Paths.Transaction,
		RoundPath:       cfg.Paths.Round,
		HealthPath:      cfg.Paths.Health,
		Headers:         cfg.Headers,
		AuthToken:       cfg.AuthToken,
	})
	if err != nil {
		return err
	}

	fd, err := buildDataFeeder(cfg)
	if err != nil {
		return err
	}
	if fd != nil {
		defer fd.Close()
	}

	if cfg.Warmup > 0 {
		warmup(ctx, client, cfg.Warmup)
	}

	collector := metrics.NewCollector()

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		Duration:      cfg.Duration,
		Think:         runner.Think{Min: cfg.Think.Min, Max: cfg.Think.Max},
		Retry:         newRetryPolicy(cfg),
		RatePerSecond: cfg.Rate,
		ArrivalModel:  toRunnerArrivalModel(cfg.Arrival.Model),
		RandomSeed:    cfg.Seed,
		Workload:      buildWorkload(cfg, client, fd, provider),
		Collector:     collector,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboardConfig(cfg), cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var progress *report.ProgressReporter
	if !cfg.Dashboard && cfg.Format != config.FormatJSON {
		progress = report.NewProgressReporter(collector, progressInterval, os.Stderr)
		progress.Start()
	}

	result := r.Run(runCtx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stderr)
	}
	if dash != nil {
		dash.Stop()
	}

	snap := collector.Snapshot()
	summary := report.Finalize(snap, report.Meta{
		RunID:       newRunID(),
		Target:      cfg.TargetURL,
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
		TargetP95:   cfg.TargetP95,
	}, result.Duration)

	if err := report.WriteSummary(cfg.SummaryPath, summary); err != nil {
		return err
	}

	if cfg.Format == config.FormatJSON {
		if err := report.PrintJSONReport(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		report.PrintReport(os.Stdout, summary, snap)
	}

	// In JSON mode stdout must stay machine-readable, so threshold verdicts
	// move to stderr.
	thresholdOut := io.Writer(os.Stdout)
	if cfg.Format == config.FormatJSON {
		thresholdOut = os.Stderr
	}
	return evaluateThresholds(thresholds, summary, thresholdOut)
}

// warmup issues best-effort health probes before the workers start. Failures
// are logged and never abort the run.
func warmup(ctx context.Context, client *target.Client, probes int) {
	for i := 0; i < probes; i++ {
		if ctx.Err() != nil {
			return
		}
		if err := client.CheckHealth(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "[loadbench] warmup probe %d/%d failed: %v\n", i+1, probes, err)
		}
	}
}

func evaluateThresholds(thresholds []threshold.Threshold, summary report.Summary, w io.Writer) error {
	if len(thresholds) == 0 {
		return nil
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(summary)
	failed := 0
	fmt.Fprintln(w, "\nThresholds:")
	for _, res := range results {
		fmt.Fprintf(w, "  %s\n", res.Message)
		if !res.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d thresholds failed", failed, len(results))
	}
	return nil
}

func newRunID() string {
	return "run-" + strings.ToLower(ulid.Make().String())
}

func dashboardConfig(cfg *config.Config) dashboard.TestConfig {
	return dashboard.TestConfig{
		TargetURL:   cfg.TargetURL,
		Concurrency: cfg.Concurrency,
		Duration:    cfg.Duration,
		Rate:        cfg.Rate,
		Timeout:     cfg.Timeout,
		Retries:     cfg.Retries,
		Arrival:     string(cfg.Arrival.Model),
		ConfigFile:  cfg.ConfigFile,
	}
}

func toRunnerArrivalModel(model config.ArrivalModel) runner.ArrivalModel {
	switch model {
	case config.ArrivalModelPoisson:
		return runner.ArrivalModelPoisson
	default:
		return runner.ArrivalModelUniform
	}
}

// newRetryPolicy maps the retry settings onto the executor's policy: the
// configured retries are attempts after the first, transport errors
// (including per-attempt timeouts) and 429/5xx domain failures retry,
// application-level rejects do not.
func newRetryPolicy(cfg *config.Config) runner.RetryPolicy {
	return runner.RetryPolicy{
		MaxAttempts: cfg.Retries + 1,
		Delay:       cfg.BackoffBase,
		ShouldRetry: func(err error) bool {
			if err == nil {
				return false
			}
			// A timed-out attempt matches context.DeadlineExceeded on
			// recent net/http, so the timeout check must come first: the
			// per-attempt timeout is retryable, run cancellation is not.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return true
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}

			var domainErr *runner.DomainError
			if errors.As(err, &domainErr) {
				if domainErr.StatusCode == http.StatusTooManyRequests {
					return true
				}
				return domainErr.StatusCode >= 500
			}

			return true
		},
	}
}

// stderrFailureLogger serializes failure lines so concurrent workers do not
// interleave output.
type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[loadbench] operation failed: %v\n", err)
}
