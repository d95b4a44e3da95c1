package target_test

import (
	"math"
	"strings"
	"testing"

	"github.com/vgs-kv/loadbench/internal/target"
)

func TestSessionDeterministicFromSeed(t *testing.T) {
	opt := target.SessionOptions{
		Seed:      42,
		MinAmount: 1,
		MaxAmount: 100,
		RoundID:   "round-fixed",
		PlayerID:  "player-fixed",
	}
	a := target.NewSession(opt)
	b := target.NewSession(opt)

	for i := 0; i < 50; i++ {
		txnA := a.NextTransaction()
		txnB := b.NextTransaction()
		if txnA.Type != txnB.Type {
			t.Fatalf("draw %d: Type %q != %q", i, txnA.Type, txnB.Type)
		}
		if txnA.Amount != txnB.Amount {
			t.Fatalf("draw %d: Amount %v != %v", i, txnA.Amount, txnB.Amount)
		}
	}
}

func TestSessionTransactionIDsUnique(t *testing.T) {
	session := target.NewSession(target.SessionOptions{Seed: 7})
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := session.NextTransaction().TransactionID
		if !strings.HasPrefix(id, "txn-") {
			t.Fatalf("TransactionID = %q, want txn- prefix", id)
		}
		if id != strings.ToLower(id) {
			t.Fatalf("TransactionID = %q, want lowercase", id)
		}
		if seen[id] {
			t.Fatalf("duplicate TransactionID %q", id)
		}
		seen[id] = true
	}
}

func TestSessionAmountBounds(t *testing.T) {
	session := target.NewSession(target.SessionOptions{Seed: 3, MinAmount: 1, MaxAmount: 100})
	for i := 0; i < 200; i++ {
		amount := session.NextTransaction().Amount
		if amount < 1 || amount > 100 {
			t.Fatalf("Amount = %v, want within [1, 100]", amount)
		}
		// Cents rounding: the amount times 100 must be a whole number.
		if cents := amount * 100; math.Abs(cents-math.Round(cents)) > 1e-9 {
			t.Fatalf("Amount = %v, want cents-rounded", amount)
		}
	}
}

func TestSessionInvertedAmountRange(t *testing.T) {
	session := target.NewSession(target.SessionOptions{Seed: 3, MinAmount: 50, MaxAmount: 10})
	if amount := session.NextTransaction().Amount; amount != 50 {
		t.Errorf("Amount = %v, want 50 (max clamped to min)", amount)
	}
}

func TestSessionIdentityOverrides(t *testing.T) {
	session := target.NewSession(target.SessionOptions{
		Seed:     1,
		RoundID:  "round-from-feeder",
		PlayerID: "player-from-feeder",
	})
	if session.RoundID() != "round-from-feeder" {
		t.Errorf("RoundID() = %q, want round-from-feeder", session.RoundID())
	}
	if session.PlayerID() != "player-from-feeder" {
		t.Errorf("PlayerID() = %q, want player-from-feeder", session.PlayerID())
	}
	txn := session.NextTransaction()
	if txn.RoundID != "round-from-feeder" || txn.PlayerID != "player-from-feeder" {
		t.Errorf("payload identity = %q/%q, want feeder identity", txn.RoundID, txn.PlayerID)
	}
}

func TestSessionGeneratedIdentity(t *testing.T) {
	a := target.NewSession(target.SessionOptions{Seed: 1})
	b := target.NewSession(target.SessionOptions{Seed: 2})

	if !strings.HasPrefix(a.RoundID(), "round-") {
		t.Errorf("RoundID() = %q, want round- prefix", a.RoundID())
	}
	if !strings.HasPrefix(a.PlayerID(), "player-") {
		t.Errorf("PlayerID() = %q, want player- prefix", a.PlayerID())
	}
	if a.RoundID() == b.RoundID() {
		t.Errorf("two sessions share round %q", a.RoundID())
	}
}

func TestSessionTransactionTypes(t *testing.T) {
	valid := map[string]bool{"BET": true, "WIN": true, "LOSS": true, "BONUS": true}
	session := target.NewSession(target.SessionOptions{Seed: 11})
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		kind := session.NextTransaction().Type
		if !valid[kind] {
			t.Fatalf("Type = %q, want one of BET/WIN/LOSS/BONUS", kind)
		}
		seen[kind] = true
	}
	if len(seen) < 2 {
		t.Errorf("200 draws produced only %d distinct types", len(seen))
	}
}
