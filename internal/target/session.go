package target

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Transaction is one wallet write against a game round.
type Transaction struct {
	RoundID       string  `json:"roundId"`
	TransactionID string  `json:"transactionId"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	PlayerID      string  `json:"playerId"`
}

var transactionTypes = []string{"BET", "WIN", "LOSS", "BONUS"}

// SessionOptions configure a Session.
type SessionOptions struct {
	// Seed fixes the random sequence; zero seeds from the clock.
	Seed int64

	// MinAmount and MaxAmount bound the synthesized transaction amount.
	MinAmount float64
	MaxAmount float64

	// RoundID and PlayerID pin the session's identity, e.g. from a feeder
	// record. Empty values are generated.
	RoundID  string
	PlayerID string
}

// Session synthesizes transaction payloads for one worker. All of a
// session's transactions target the same round and player, mirroring a
// player's activity within a game session. A Session is not safe for
// concurrent use; each worker owns its own.
type Session struct {
	rng     *rand.Rand
	entropy *ulid.MonotonicEntropy

	roundID   string
	playerID  string
	minAmount float64
	maxAmount float64
}

// NewSession builds a Session from options, generating any identity fields
// left empty.
func NewSession(opt SessionOptions) *Session {
	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	minAmount, maxAmount := opt.MinAmount, opt.MaxAmount
	if minAmount < 0 {
		minAmount = 0
	}
	if maxAmount < minAmount {
		maxAmount = minAmount
	}

	roundID := opt.RoundID
	if roundID == "" {
		roundID = "round-" + uuid.NewString()
	}
	playerID := opt.PlayerID
	if playerID == "" {
		playerID = fmt.Sprintf("player-%d", rng.Intn(10000)+1)
	}

	return &Session{
		rng:       rng,
		entropy:   ulid.Monotonic(rng, 0),
		roundID:   roundID,
		playerID:  playerID,
		minAmount: minAmount,
		maxAmount: maxAmount,
	}
}

// NextTransaction synthesizes one transaction payload.
func (s *Session) NextTransaction() Transaction {
	return Transaction{
		RoundID:       s.roundID,
		TransactionID: s.nextTransactionID(),
		Type:          transactionTypes[s.rng.Intn(len(transactionTypes))],
		Amount:        s.nextAmount(),
		PlayerID:      s.playerID,
	}
}

// RoundID returns the round all of the session's transactions target.
func (s *Session) RoundID() string {
	return s.roundID
}

// PlayerID returns the session's player identity.
func (s *Session) PlayerID() string {
	return s.playerID
}

// nextTransactionID mints a monotonic, per-session-unique identifier.
func (s *Session) nextTransactionID() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
	return "txn-" + strings.ToLower(id.String())
}

// nextAmount draws a cents-rounded amount within the configured range.
func (s *Session) nextAmount() float64 {
	v := s.minAmount
	if span := s.maxAmount - s.minAmount; span > 0 {
		v += s.rng.Float64() * span
	}
	return math.Round(v*100) / 100
}
