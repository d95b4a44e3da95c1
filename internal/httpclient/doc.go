// Package httpclient provides the shared HTTP plumbing for the loadbench
// harness.
//
// # HTTP Client
//
// The [NewClient] function creates an http.Client tuned for sustained load
// against a single target: pooled keep-alive connections sized to the worker
// count, HTTP/2 where the target supports it, and a per-attempt timeout:
//
//	client := httpclient.NewClient(5*time.Second, concurrency)
//	resp, err := client.Do(req)
//
// # Response Bodies
//
// [ReadBody] drains a response body with a 1MB cap so a misbehaving target
// cannot balloon memory, and [Snippet] bounds body text quoted in failure
// reasons. Every response handled by the harness flows through these
// helpers.
package httpclient
