package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vgs-kv/loadbench/internal/config"
	"github.com/vgs-kv/loadbench/internal/feeder"
	"github.com/vgs-kv/loadbench/internal/runner"
	"github.com/vgs-kv/loadbench/internal/target"
	"github.com/vgs-kv/loadbench/internal/tracing"
)

func buildDataFeeder(cfg *config.Config) (feeder.Feeder, error) {
	path := strings.TrimSpace(cfg.Feeder.Path)
	if path == "" {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Feeder.Type)) {
	case "":
		// No explicit type: select the format from the file extension.
		return feeder.Open(path)
	case "csv":
		return feeder.NewCSVFeeder(path)
	case "json":
		return feeder.NewJSONFeeder(path)
	default:
		return nil, fmt.Errorf("unsupported feeder type %q", cfg.Feeder.Type)
	}
}

// buildWorkload returns the factory the runner calls once per worker. Each
// worker gets its own session so transaction IDs and round state never cross
// goroutines.
func buildWorkload(cfg *config.Config, client *target.Client, fd feeder.Feeder, tp *tracing.Provider) runner.Workload {
	baseSeed := cfg.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	var failureLog runner.FailureLogger
	if cfg.LogFailures {
		failureLog = &stderrFailureLogger{}
	}

	return func(worker int) []runner.Operation {
		roundID, playerID := feederIDs(fd)
		session := target.NewSession(target.SessionOptions{
			Seed:      baseSeed + int64(worker)*104729,
			MinAmount: cfg.Amount.Min,
			MaxAmount: cfg.Amount.Max,
			RoundID:   roundID,
			PlayerID:  playerID,
		})

		ops := make([]runner.Operation, 0, 3)
		if cfg.Mix.Transaction > 0 {
			ops = append(ops, operation(target.OpTransaction, cfg.Mix.Transaction,
				target.NewTransactionRequester(client, session), tp, failureLog))
		}
		if cfg.Mix.Round > 0 {
			ops = append(ops, operation(target.OpRound, cfg.Mix.Round,
				target.NewRoundRequester(client, session), tp, failureLog))
		}
		if cfg.Mix.Health > 0 {
			ops = append(ops, operation(target.OpHealth, cfg.Mix.Health,
				target.NewHealthRequester(client), tp, failureLog))
		}
		return ops
	}
}

func operation(name string, weight int, req runner.Requester, tp *tracing.Provider, logger runner.FailureLogger) runner.Operation {
	if tp.Active() {
		req = &spanRequester{inner: req, tracer: tp.Tracer(), op: name}
	}
	if logger != nil {
		req = runner.WithLogging(req, logger)
	}
	return runner.Operation{Name: name, Weight: weight, Requester: req}
}

// feederIDs draws one record for a worker session. Records without the
// expected columns fall back to generated identifiers.
func feederIDs(fd feeder.Feeder) (roundID, playerID string) {
	if fd == nil {
		return "", ""
	}
	record, err := fd.Next(context.Background())
	if err != nil || record == nil {
		return "", ""
	}
	return firstValue(record, "round_id", "roundId"), firstValue(record, "player_id", "playerId")
}

func firstValue(record feeder.Record, keys ...string) string {
	for _, key := range keys {
		if v := record[key]; v != "" {
			return v
		}
	}
	return ""
}

// spanRequester records one client span per attempt. Workers own their
// requesters, so the attempt counter needs no locking.
type spanRequester struct {
	inner   runner.Requester
	tracer  trace.Tracer
	op      string
	attempt int
}

func (s *spanRequester) Do(ctx context.Context) error {
	s.attempt++
	ctx, span := tracing.StartOpSpan(ctx, s.tracer, s.op)
	err := s.inner.Do(ctx)
	tracing.EndSpan(span, err,
		attribute.Int("loadbench.attempt", s.attempt),
		attribute.String("loadbench.outcome", outcomeLabel(err)),
	)
	return err
}

// Prepare resets the attempt counter at the start of each operation and
// forwards the hook.
func (s *spanRequester) Prepare() {
	s.attempt = 0
	if p, ok := s.inner.(runner.Preparer); ok {
		p.Prepare()
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var domainErr *runner.DomainError
	if errors.As(err, &domainErr) {
		return "soft_failure"
	}
	return "hard_failure"
}
