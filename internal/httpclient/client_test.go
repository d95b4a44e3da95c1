package httpclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClientTimeout(t *testing.T) {
	client := NewClient(5*time.Second, 10)
	if client.Timeout != 5*time.Second {
		t.Fatalf("expected timeout 5s, got %s", client.Timeout)
	}

	client = NewClient(-1, 10)
	if client.Timeout != 0 {
		t.Fatalf("expected negative timeout coerced to 0, got %s", client.Timeout)
	}
}

func TestNewClientScalesPoolWithConcurrency(t *testing.T) {
	transport, ok := NewClient(time.Second, 10).Transport.(*http.Transport)
	if !ok {
		t.Fatal("expected *http.Transport")
	}
	if transport.MaxIdleConnsPerHost != defaultMaxIdleConnsPerHost {
		t.Errorf("expected default per-host pool for small concurrency, got %d", transport.MaxIdleConnsPerHost)
	}

	transport = NewClient(time.Second, 500).Transport.(*http.Transport)
	if transport.MaxIdleConnsPerHost != 500 {
		t.Errorf("expected per-host pool 500, got %d", transport.MaxIdleConnsPerHost)
	}
	if transport.MaxIdleConns != 1000 {
		t.Errorf("expected idle pool 1000, got %d", transport.MaxIdleConns)
	}
	if !transport.ForceAttemptHTTP2 {
		t.Error("expected HTTP/2 enabled")
	}
}

func TestReadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body, err := ReadBody(resp)
	if err != nil {
		t.Fatalf("expected body, got error: %v", err)
	}
	if string(body) != `{"success":true}` {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestReadBodyCapsLargeResponses(t *testing.T) {
	huge := strings.Repeat("x", maxBodyReadSize+4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(huge))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body, err := ReadBody(resp)
	if err != nil {
		t.Fatalf("expected truncated body, got error: %v", err)
	}
	if len(body) != maxBodyReadSize {
		t.Fatalf("expected body capped at %d bytes, got %d", maxBodyReadSize, len(body))
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet([]byte("  error detail \n")); got != "error detail" {
		t.Errorf("expected trimmed snippet, got %q", got)
	}

	long := strings.Repeat("a", maxSnippetBytes*2)
	if got := Snippet([]byte(long)); len(got) != maxSnippetBytes {
		t.Errorf("expected snippet capped at %d, got %d", maxSnippetBytes, len(got))
	}

	if got := Snippet(nil); got != "" {
		t.Errorf("expected empty snippet for nil body, got %q", got)
	}
}
