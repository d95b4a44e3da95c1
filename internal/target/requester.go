package target

import "context"

// Operation names, as they appear in the traffic mix, per-op metrics and
// the summary artifact.
const (
	OpTransaction = "transaction"
	OpRound       = "round"
	OpHealth      = "health"
)

// TransactionRequester issues wallet writes. It implements runner.Requester
// and runner.Preparer: Prepare synthesizes the payload once per logical
// operation, so retried attempts replay the identical transaction.
type TransactionRequester struct {
	client  *Client
	session *Session
	payload Transaction
}

func NewTransactionRequester(client *Client, session *Session) *TransactionRequester {
	return &TransactionRequester{client: client, session: session}
}

// Prepare pins the payload for the next logical operation.
func (r *TransactionRequester) Prepare() {
	r.payload = r.session.NextTransaction()
}

// Do posts the prepared transaction. A missing Prepare is tolerated by
// synthesizing on first use.
func (r *TransactionRequester) Do(ctx context.Context) error {
	if r.payload.TransactionID == "" {
		r.Prepare()
	}
	return r.client.PostTransaction(ctx, r.payload)
}

// RoundRequester reads the session's round. Rounds that have not been
// written yet come back 404, which the client treats as a valid outcome.
type RoundRequester struct {
	client  *Client
	session *Session
}

func NewRoundRequester(client *Client, session *Session) *RoundRequester {
	return &RoundRequester{client: client, session: session}
}

func (r *RoundRequester) Do(ctx context.Context) error {
	return r.client.GetRound(ctx, r.session.RoundID())
}

// HealthRequester probes the target's liveness endpoint.
type HealthRequester struct {
	client *Client
}

func NewHealthRequester(client *Client) *HealthRequester {
	return &HealthRequester{client: client}
}

func (r *HealthRequester) Do(ctx context.Context) error {
	return r.client.CheckHealth(ctx)
}
