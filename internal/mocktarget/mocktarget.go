// Package mocktarget is an in-process stand-in for the VGS
// atomic-transaction service. It serves the three endpoints the benchmark
// exercises with configurable latency and failure injection, and keeps
// enough state for tests to assert what the harness actually sent.
package mocktarget

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Options configure the simulated service.
type Options struct {
	// MinLatency and MaxLatency bound the simulated processing delay for
	// transaction and round requests. Zero values mean no delay.
	MinLatency time.Duration
	MaxLatency time.Duration
	// FailureRate is the fraction of transactions rejected, 0..1.
	FailureRate float64
	// Seed fixes the random sequence; zero seeds from the clock.
	Seed int64
}

// Round is the accumulated state of one game round.
type Round struct {
	Transactions      int64
	TotalAmount       float64
	LastTransactionID string
}

// Counts reports how many requests each endpoint has served.
type Counts struct {
	Transactions int64
	Rounds       int64
	Health       int64
	Other        int64
}

// Server implements http.Handler. Rounds exist only once a transaction has
// been written to them; until then round retrieval returns 404, mirroring
// the real service.
type Server struct {
	opt Options
	mux *http.ServeMux

	mu       sync.Mutex
	rng      *rand.Rand
	rounds   map[string]*Round
	counts   Counts
	failures int64
}

// New builds a Server. Out-of-range options are clamped.
func New(opt Options) *Server {
	if opt.FailureRate < 0 {
		opt.FailureRate = 0
	}
	if opt.FailureRate > 1 {
		opt.FailureRate = 1
	}
	if opt.MinLatency < 0 {
		opt.MinLatency = 0
	}
	if opt.MaxLatency < opt.MinLatency {
		opt.MaxLatency = opt.MinLatency
	}
	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Server{
		opt:    opt,
		rng:    rand.New(rand.NewSource(seed)),
		rounds: make(map[string]*Round),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/actuator/health", s.handleHealth)
	mux.HandleFunc("/api/atomic/atomic-transaction", s.handleTransaction)
	mux.HandleFunc("/api/atomic/game-round/", s.handleRound)
	mux.HandleFunc("/", s.handleUnknown)
	s.mux = mux

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Round returns a copy of one round's state and whether any transaction has
// been written to it.
func (s *Server) Round(roundID string) (Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[roundID]
	if !ok {
		return Round{}, false
	}
	return *round, true
}

// Counts returns the per-endpoint request tally.
func (s *Server) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts.Health++
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "UP",
		"pattern":   "Mock VGS Server",
		"timestamp": time.Now().UnixMilli(),
	})
}

type transactionRequest struct {
	RoundID       string  `json:"roundId"`
	TransactionID string  `json:"transactionId"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	PlayerID      string  `json:"playerId"`
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts.Transactions++
	s.mu.Unlock()

	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	elapsed := s.delay()

	if s.injectFailure() {
		// Injected failures alternate between a server error and an
		// application-level reject so both classification paths stay
		// exercised.
		s.mu.Lock()
		s.failures++
		odd := s.failures%2 == 1
		s.mu.Unlock()

		if odd {
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"success":           false,
				"error":             "simulated server error",
				"status":            "Atomic transaction failed",
				"execution_time_ms": elapsed.Milliseconds(),
			})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success":           false,
			"error":             "cas conflict",
			"status":            "Atomic transaction failed",
			"execution_time_ms": elapsed.Milliseconds(),
		})
		return
	}

	roundID := req.RoundID
	if roundID == "" {
		roundID = "UNKNOWN"
	}

	s.mu.Lock()
	round, ok := s.rounds[roundID]
	if !ok {
		round = &Round{}
		s.rounds[roundID] = round
	}
	round.Transactions++
	round.TotalAmount += req.Amount
	round.LastTransactionID = req.TransactionID
	txnID := 10000 + s.rng.Intn(90000)
	casValue := 1000 + s.rng.Intn(9000)
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"status":            "Atomic transaction processed successfully",
		"transaction_id":    fmt.Sprintf("TXN_%d", txnID),
		"round_id":          roundID,
		"cas_value":         casValue,
		"execution_time_ms": elapsed.Milliseconds(),
		"atomic_operation":  true,
		"pattern":           "Mock VGS Server",
		"timestamp":         time.Now().UnixMilli(),
		"response_time_ms":  elapsed.Milliseconds(),
		"meets_20ms_target": elapsed <= 20*time.Millisecond,
		"conflict_resolved": false,
		"retry_count":       0,
	})
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts.Rounds++
	s.mu.Unlock()

	if r.Method != http.MethodGet {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	roundID := strings.TrimPrefix(r.URL.Path, "/api/atomic/game-round/")
	elapsed := s.delay()

	round, ok := s.Round(roundID)
	if roundID == "" || !ok {
		respondJSON(w, http.StatusNotFound, map[string]any{
			"success":          false,
			"error":            "Round not found",
			"response_time_ms": elapsed.Milliseconds(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":                true,
		"round_id":               roundID,
		"transaction_count":      round.Transactions,
		"total_amount":           round.TotalAmount,
		"last_transaction_id":    round.LastTransactionID,
		"response_time_ms":       elapsed.Milliseconds(),
		"meets_50ms_requirement": elapsed <= 50*time.Millisecond,
		"pattern":                "Mock VGS Server",
		"timestamp":              time.Now().UnixMilli(),
	})
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts.Other++
	s.mu.Unlock()

	respondJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
}

// delay sleeps for a random duration inside the configured latency range
// and reports how long it slept.
func (s *Server) delay() time.Duration {
	max := s.opt.MaxLatency
	if max <= 0 {
		return 0
	}
	d := s.opt.MinLatency
	if span := max - s.opt.MinLatency; span > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int63n(int64(span) + 1))
		s.mu.Unlock()
	}
	time.Sleep(d)
	return d
}

func (s *Server) injectFailure() bool {
	if s.opt.FailureRate <= 0 {
		return false
	}
	if s.opt.FailureRate >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.opt.FailureRate
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
