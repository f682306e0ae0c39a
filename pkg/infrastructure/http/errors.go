// Package httputil holds the HTTP plumbing shared by the Strava client and
// the service: upstream error classification and server construction.
package httputil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBodySize caps how many bytes of an upstream body end up in an error.
const MaxErrorBodySize = 500

// HTTPError is an upstream 4xx/5xx response whose body could not be
// interpreted as a structured API fault.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("upstream %s (status %d)", e.Status, e.StatusCode)
	if e.Body == "" {
		return msg
	}
	return msg + ": " + e.Body
}

// Snippet trims body and cuts it to MaxErrorBodySize, marking the cut with "...".
func Snippet(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) <= MaxErrorBodySize {
		return string(trimmed)
	}
	return string(trimmed[:MaxErrorBodySize]) + "..."
}

// ParseErrorResponse returns an *HTTPError for 4xx/5xx responses and nil
// otherwise. The body is re-wrapped so the caller can still decode it.
func ParseErrorResponse(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}
	if err == nil {
		httpErr.Body = Snippet(body)
	}
	if resp.Request != nil && resp.Request.URL != nil {
		httpErr.URL = resp.Request.URL.Redacted()
	}
	return httpErr
}

// StatusCode extracts the upstream status from err, or 0 when err does not
// wrap an *HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
