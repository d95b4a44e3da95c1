package target

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vgs-kv/loadbench/internal/httpclient"
	"github.com/vgs-kv/loadbench/internal/runner"
	"github.com/vgs-kv/loadbench/internal/tracing"
)

const (
	defaultTransactionPath = "/api/atomic/atomic-transaction"
	defaultRoundPath       = "/api/atomic/game-round/"
	defaultHealthPath      = "/actuator/health"

	defaultSuccessPath = "success"
	defaultReasonPath  = "error"
)

// Options configure a Client. BaseURL and HTTPClient are required; every
// other field falls back to the service's conventional value when empty.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client

	// SuccessPath and ReasonPath are gjson paths into the response body:
	// the boolean success flag and the failure reason consulted during
	// classification.
	SuccessPath string
	ReasonPath  string

	// TransactionPath and HealthPath are full endpoint paths. RoundPath is
	// a prefix; the round ID is appended to it.
	TransactionPath string
	RoundPath       string
	HealthPath      string

	// Headers are applied to every request. AuthToken, when set, becomes a
	// bearer Authorization header.
	Headers   map[string]string
	AuthToken string
}

// Client issues the three benchmark operations against one target and
// classifies their responses. It is safe for concurrent use; all mutable
// state lives in the underlying http.Client's connection pool.
type Client struct {
	http *http.Client

	transactionURL string
	roundURL       string
	healthURL      string

	successPath string
	reasonPath  string

	headers   map[string]string
	authToken string
}

// NewClient validates the options and builds a Client.
func NewClient(opt Options) (*Client, error) {
	base := strings.TrimSpace(opt.BaseURL)
	if base == "" {
		return nil, errors.New("target base URL is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL %q: %w", base, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("target URL %q must use http or https", base)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("target URL %q has no host", base)
	}
	if opt.HTTPClient == nil {
		return nil, errors.New("http client is required")
	}

	base = strings.TrimRight(base, "/")

	return &Client{
		http:           opt.HTTPClient,
		transactionURL: base + normalizePath(opt.TransactionPath, defaultTransactionPath),
		roundURL:       base + prefixPath(opt.RoundPath, defaultRoundPath),
		healthURL:      base + normalizePath(opt.HealthPath, defaultHealthPath),
		successPath:    fallback(opt.SuccessPath, defaultSuccessPath),
		reasonPath:     fallback(opt.ReasonPath, defaultReasonPath),
		headers:        opt.Headers,
		authToken:      opt.AuthToken,
	}, nil
}

// PostTransaction writes one wallet transaction. A completed exchange whose
// status or success flag signals rejection returns a *runner.DomainError;
// transport failures return the underlying error.
func (c *Client) PostTransaction(ctx context.Context, txn Transaction) error {
	payload, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	status, body, err := c.exchange(ctx, http.MethodPost, c.transactionURL, payload)
	if err != nil {
		return fmt.Errorf("post transaction: %w", err)
	}
	return c.classify(status, body)
}

// GetRound fetches one game round's accumulated state. A 404 is a valid
// outcome: rounds do not exist until a transaction has been written to
// them, so "not found yet" is expected during warm-up.
func (c *Client) GetRound(ctx context.Context, roundID string) error {
	status, body, err := c.exchange(ctx, http.MethodGet, c.roundURL+url.PathEscape(roundID), nil)
	if err != nil {
		return fmt.Errorf("get round: %w", err)
	}
	if status == http.StatusNotFound {
		return nil
	}
	return c.classify(status, body)
}

// CheckHealth probes the target's liveness endpoint.
func (c *Client) CheckHealth(ctx context.Context) error {
	status, body, err := c.exchange(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return c.classify(status, body)
}

// exchange performs one HTTP round trip and drains the response body. Body
// read errors are non-fatal; classification proceeds with an empty body.
func (c *Client) exchange(ctx context.Context, method, target string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	c.apply(ctx, req, payload != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}

	body, err := httpclient.ReadBody(resp)
	if err != nil {
		body = nil
	}
	return resp.StatusCode, body, nil
}

// apply decorates an outgoing request: content type, configured headers,
// bearer token, and W3C trace context when a span is live.
func (c *Client) apply(ctx context.Context, req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	tracing.InjectHTTPHeaders(ctx, req.Header)
}

// classify maps a completed exchange onto the outcome model. A non-2xx
// status is a domain failure, as is a 2xx whose success flag is explicitly
// false. A body without the flag passes.
func (c *Client) classify(status int, body []byte) error {
	if status < 200 || status >= 300 {
		return &runner.DomainError{StatusCode: status, Reason: c.reason(body)}
	}
	if flag := gjson.GetBytes(body, c.successPath); flag.Exists() && !flag.Bool() {
		return &runner.DomainError{StatusCode: status, Reason: c.reason(body)}
	}
	return nil
}

// reason extracts the target's reported failure reason, falling back to a
// bounded body snippet when the reason field is absent.
func (c *Client) reason(body []byte) string {
	if r := gjson.GetBytes(body, c.reasonPath); r.Exists() {
		if s := strings.TrimSpace(r.String()); s != "" {
			return s
		}
	}
	return httpclient.Snippet(body)
}

func normalizePath(path, def string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return def
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func prefixPath(path, def string) string {
	path = normalizePath(path, def)
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
