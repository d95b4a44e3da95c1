// Package target binds the harness to the system under test: the VGS
// atomic-transaction service.
//
// A [Client] wraps a shared http.Client with the target's base URL,
// endpoint paths, and response classification rules. Each call issues one
// HTTP exchange and returns nil for a domain-valid response, a
// [runner.DomainError] for a completed exchange the target rejected, or the
// transport error as-is. Classification consults the response status and,
// via configurable gjson paths, a success flag and failure reason in the
// body. A missing success flag passes: only an explicit false is a reject.
//
// A [Session] is one worker's payload generator: a seeded random source,
// a round and player identity, and a monotonic transaction-id stream.
// Workers own their sessions, so synthesis needs no locking.
//
// [TransactionRequester], [RoundRequester] and [HealthRequester] adapt the
// client's calls to the runner's Requester interface. The transaction
// requester pins one synthesized payload per logical operation, so retried
// attempts replay the identical transaction instead of minting a new one.
package target
