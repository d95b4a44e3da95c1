package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vgs-kv/loadbench/internal/mocktarget"
	"github.com/vgs-kv/loadbench/internal/report"
)

// TestIntegration_RunAgainstMockTarget drives a full run against the
// in-process mock service and checks the persisted artifact.
func TestIntegration_RunAgainstMockTarget(t *testing.T) {
	mock := mocktarget.New(mocktarget.Options{Seed: 1})
	server := httptest.NewServer(mock)
	defer server.Close()

	summaryPath := filepath.Join(t.TempDir(), "summary.json")
	err := run([]string{
		"--target", server.URL,
		"-c", "4",
		"-d", "300ms",
		"--think-min", "0",
		"--think-max", "0",
		"--warmup", "0",
		"--seed", "7",
		"--summary", summaryPath,
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	summary, err := report.ReadSummary(summaryPath)
	if err != nil {
		t.Fatalf("ReadSummary() error = %v", err)
	}

	if summary.TotalRequests == 0 {
		t.Fatal("TotalRequests = 0, want > 0")
	}
	if got := summary.SuccessfulRequests + summary.SoftFailures + summary.HardFailures; got != summary.TotalRequests {
		t.Errorf("outcome classes sum to %d, want %d", got, summary.TotalRequests)
	}
	if summary.SuccessfulRequests != summary.TotalRequests {
		t.Errorf("SuccessfulRequests = %d, want %d (mock configured with no failures)",
			summary.SuccessfulRequests, summary.TotalRequests)
	}
	if summary.SuccessRate != 1.0 {
		t.Errorf("SuccessRate = %v, want 1.0", summary.SuccessRate)
	}
	if !strings.HasPrefix(summary.RunID, "run-") {
		t.Errorf("RunID = %q, want run- prefix", summary.RunID)
	}
	if summary.Target != server.URL {
		t.Errorf("Target = %q, want %q", summary.Target, server.URL)
	}
	if summary.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", summary.Concurrency)
	}
	if summary.Duration != "300ms" {
		t.Errorf("Duration = %q, want 300ms", summary.Duration)
	}
	if summary.RPS <= 0 {
		t.Errorf("RPS = %v, want > 0", summary.RPS)
	}
	if summary.LatencyP95Ms <= 0 {
		t.Errorf("LatencyP95Ms = %v, want > 0", summary.LatencyP95Ms)
	}

	counts := mock.Counts()
	if counts.Transactions == 0 {
		t.Error("mock saw no transaction requests")
	}

	t.Logf("mock target run: %d operations, %d transactions, %d rounds, %d health",
		summary.TotalRequests, counts.Transactions, counts.Rounds, counts.Health)
}

// TestIntegration_ThresholdFailure verifies a failed threshold turns into a
// non-nil error after the artifact is written.
func TestIntegration_ThresholdFailure(t *testing.T) {
	mock := mocktarget.New(mocktarget.Options{Seed: 1, FailureRate: 1})
	server := httptest.NewServer(mock)
	defer server.Close()

	summaryPath := filepath.Join(t.TempDir(), "summary.json")
	err := run([]string{
		"--target", server.URL,
		"-c", "2",
		"-d", "200ms",
		"--think-min", "0",
		"--think-max", "0",
		"--warmup", "0",
		"--retries", "0",
		"--mix-transaction", "1",
		"--mix-round", "0",
		"--mix-health", "0",
		"--summary", summaryPath,
		"--threshold", "success:rate>=0.99",
	})
	if err == nil {
		t.Fatal("run() error = nil, want threshold failure")
	}
	if !strings.Contains(err.Error(), "thresholds failed") {
		t.Errorf("error = %q, want thresholds failed", err)
	}

	// The artifact is written before thresholds are judged.
	summary, readErr := report.ReadSummary(summaryPath)
	if readErr != nil {
		t.Fatalf("ReadSummary() error = %v", readErr)
	}
	if summary.SuccessfulRequests != 0 {
		t.Errorf("SuccessfulRequests = %d, want 0", summary.SuccessfulRequests)
	}
	if summary.SoftFailures != summary.TotalRequests {
		t.Errorf("SoftFailures = %d, want %d", summary.SoftFailures, summary.TotalRequests)
	}
}

// TestIntegration_UnreachableTarget checks that a dead target produces a
// completed run full of hard failures, not an abort.
func TestIntegration_UnreachableTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	summaryPath := filepath.Join(t.TempDir(), "summary.json")
	err := run([]string{
		"--target", deadURL,
		"-c", "2",
		"-d", "200ms",
		"--think-min", "0",
		"--think-max", "0",
		"--warmup", "0",
		"--retries", "0",
		"--summary", summaryPath,
	})
	if err != nil {
		t.Fatalf("run() error = %v, want nil", err)
	}

	summary, err := report.ReadSummary(summaryPath)
	if err != nil {
		t.Fatalf("ReadSummary() error = %v", err)
	}
	if summary.TotalRequests == 0 {
		t.Fatal("TotalRequests = 0, want > 0")
	}
	if summary.HardFailures != summary.TotalRequests {
		t.Errorf("HardFailures = %d, want %d", summary.HardFailures, summary.TotalRequests)
	}
	if summary.LatencyP50Ms != 0 {
		t.Errorf("LatencyP50Ms = %v, want 0 (no completed responses)", summary.LatencyP50Ms)
	}
}

// TestIntegration_FeederRecords verifies feeder-supplied round and player IDs
// flow into the transaction payloads.
func TestIntegration_FeederRecords(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]string)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			RoundID  string `json:"roundId"`
			PlayerID string `json:"playerId"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.RoundID != "" {
			mu.Lock()
			seen[payload.RoundID] = payload.PlayerID
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	feederPath := filepath.Join(dir, "rounds.csv")
	csv := "round_id,player_id\nround-alpha,player-1\nround-beta,player-2\n"
	if err := os.WriteFile(feederPath, []byte(csv), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run([]string{
		"--target", server.URL,
		"-c", "2",
		"-d", "200ms",
		"--think-min", "0",
		"--think-max", "0",
		"--warmup", "0",
		"--mix-transaction", "1",
		"--mix-round", "0",
		"--mix-health", "0",
		"--feeder-path", feederPath,
		"--feeder-type", "csv",
		"--summary", filepath.Join(dir, "summary.json"),
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatal("no transaction payloads captured")
	}
	want := map[string]string{"round-alpha": "player-1", "round-beta": "player-2"}
	for roundID, playerID := range seen {
		if want[roundID] != playerID {
			t.Errorf("round %q carried player %q, want %q", roundID, playerID, want[roundID])
		}
	}
}

// TestIntegration_HelpRequested verifies --help is not an error.
func TestIntegration_HelpRequested(t *testing.T) {
	if err := run([]string{"--help"}); err != nil {
		t.Errorf("run(--help) error = %v, want nil", err)
	}
}

// TestIntegration_ConfigErrors verifies bad invocations fail before any
// traffic is generated.
func TestIntegration_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--no-such-flag"}},
		{"bad format", []string{"--format", "xml"}},
		{"bad threshold", []string{"--threshold", "bogus"}},
		{"zero mix", []string{"--mix-transaction", "0", "--mix-round", "0", "--mix-health", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args); err == nil {
				t.Errorf("run(%v) error = nil, want error", tt.args)
			}
		})
	}
}
