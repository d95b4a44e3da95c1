package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// maxBodyReadSize bounds how much of a response body is read into
	// memory for classification.
	maxBodyReadSize = 1 << 20 // 1MB

	// maxSnippetBytes bounds how much body text is carried into failure
	// reasons and logs.
	maxSnippetBytes = 1024
)

// ReadBody reads up to 1MB of the response body and closes it. Responses
// larger than the cap are truncated rather than rejected.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyReadSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return data, nil
}

// Snippet returns a trimmed, bounded prefix of a response body suitable for
// inclusion in an error message.
func Snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetBytes {
		s = s[:maxSnippetBytes]
	}
	return s
}
