package runner

import "fmt"

// DomainError reports a completed HTTP exchange whose response indicates a
// domain-level failure: an unexpected status code, or a body whose success
// flag is false. The exchange itself worked, so operations failing this way
// still carry a latency sample.
type DomainError struct {
	StatusCode int
	Reason     string
}

func (e *DomainError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("domain failure: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("domain failure: HTTP %d: %s", e.StatusCode, e.Reason)
}
