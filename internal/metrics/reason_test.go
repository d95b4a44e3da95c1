package metrics_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return false }

type flakyTransportError struct{}

func (flakyTransportError) Error() string { return "flaky transport" }

func TestReasonFromError(t *testing.T) {
	refused := &net.OpError{
		Op:  "dial",
		Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"wrapped deadline", fmt.Errorf("post transaction: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"connection refused", refused, "connection_refused"},
		{"wrapped refused", fmt.Errorf("do request: %w", refused), "connection_refused"},
		{"dns", &net.DNSError{Err: "no such host", Name: "bench.invalid"}, "dns_error"},
		{"net timeout", timeoutError{}, "timeout"},
		{"eof", io.EOF, "connection_closed"},
		{"unexpected eof", io.ErrUnexpectedEOF, "connection_closed"},
		{"fallback to type name", flakyTransportError{}, "flaky_transport_error"},
	}
	for _, tc := range cases {
		if got := metrics.ReasonFromError(tc.err); got != tc.want {
			t.Errorf("%s: ReasonFromError() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSanitizeReason(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Insufficient funds", "insufficient_funds"},
		{"HTTP 500", "http_500"},
		{"round  not/found", "round_not_found"},
		{"  CAS conflict!  ", "cas_conflict"},
		{"", "unspecified"},
		{"---", "unspecified"},
		{"already_snake_case", "already_snake_case"},
	}
	for _, tc := range cases {
		if got := metrics.SanitizeReason(tc.in); got != tc.want {
			t.Errorf("SanitizeReason(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeReasonBoundsLength(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "very "
	}
	got := metrics.SanitizeReason(long + "long reason")
	if len(got) > 60 {
		t.Errorf("expected label capped at 60 chars, got %d: %q", len(got), got)
	}
	if got[len(got)-1] == '_' {
		t.Errorf("expected no trailing underscore after truncation, got %q", got)
	}
}

func TestSortReasons(t *testing.T) {
	got := metrics.SortReasons(map[string]int64{
		"timeout":            3,
		"connection_refused": 7,
		"declined":           3,
	})

	want := []metrics.ReasonCount{
		{Reason: "connection_refused", Count: 7},
		{Reason: "declined", Count: 3},
		{Reason: "timeout", Count: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	if metrics.SortReasons(nil) != nil {
		t.Error("expected nil result for empty map")
	}
}
