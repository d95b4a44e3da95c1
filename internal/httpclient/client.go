package httpclient

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultMaxIdleConns        = 256
	defaultMaxIdleConnsPerHost = 32
)

// NewClient returns an http.Client tuned for sustained load against a single
// host. The per-host idle pool is sized to the worker count so connections
// are reused across iterations instead of being redialed under concurrency.
// timeout bounds each attempt end to end; 0 disables it.
func NewClient(timeout time.Duration, concurrency int) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	maxIdlePerHost := defaultMaxIdleConnsPerHost
	if concurrency > maxIdlePerHost {
		maxIdlePerHost = concurrency
	}
	maxIdle := defaultMaxIdleConns
	if 2*concurrency > maxIdle {
		maxIdle = 2 * concurrency
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
