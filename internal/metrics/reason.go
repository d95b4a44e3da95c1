package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"syscall"
)

const maxReasonLen = 60

// ReasonFromError derives a short, stable reason label from a transport
// error. Labels are snake_case so that identical failure modes aggregate
// into one bucket regardless of the addresses and ports embedded in the
// underlying error strings.
func ReasonFromError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection_refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "connection_reset"
	case errors.Is(err, syscall.EPIPE):
		return "broken_pipe"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "connection_closed"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns_error"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	return typeReason(err)
}

// typeReason falls back to the error's dynamic type name when no known
// failure mode matches.
func typeReason(err error) string {
	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, "Error")
	if name == "" {
		return "unknown_error"
	}
	return SanitizeReason(camelToSnake(name) + "_error")
}

// SanitizeReason normalizes free-form reason text, such as an error message
// from a response body, into a bounded snake_case label.
func SanitizeReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "unspecified"
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	lastUnderscore := false
	for _, r := range strings.ToLower(trimmed) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	label := strings.TrimSuffix(b.String(), "_")
	if label == "" {
		return "unspecified"
	}
	if len(label) > maxReasonLen {
		label = strings.TrimSuffix(label[:maxReasonLen], "_")
	}
	return label
}

func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ReasonCount pairs a failure reason with its occurrence count.
type ReasonCount struct {
	Reason string
	Count  int64
}

// SortReasons flattens a reason count map into a slice ordered by
// descending count, with ties broken alphabetically.
func SortReasons(reasons map[string]int64) []ReasonCount {
	if len(reasons) == 0 {
		return nil
	}
	out := make([]ReasonCount, 0, len(reasons))
	for reason, count := range reasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
