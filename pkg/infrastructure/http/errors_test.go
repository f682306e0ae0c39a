package httputil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseErrorResponse_Success(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Body:       http.NoBody,
	}

	if err := ParseErrorResponse(resp); err != nil {
		t.Errorf("Expected nil error for 200 response, got: %v", err)
	}
}

func TestParseErrorResponse_Error(t *testing.T) {
	body := `<html><body>Bad Gateway</body></html>`
	resp := &http.Response{
		StatusCode: 502,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    httptest.NewRequest("GET", "https://www.strava.com/api/v3/athlete/activities?page=2", nil),
	}

	err := ParseErrorResponse(resp)
	if err == nil {
		t.Fatal("Expected error for 502 response")
	}

	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != 502 {
		t.Errorf("Expected status 502, got %d", httpErr.StatusCode)
	}
	if !strings.Contains(httpErr.Body, "Bad Gateway") {
		t.Errorf("Expected body to contain upstream message, got: %s", httpErr.Body)
	}
	if !strings.Contains(httpErr.URL, "/athlete/activities") {
		t.Errorf("Expected URL to be recorded, got: %s", httpErr.URL)
	}
}

func TestParseErrorResponse_BodyRewrap(t *testing.T) {
	body := `{"message":"Authorization Error"}`
	resp := &http.Response{
		StatusCode: 401,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    httptest.NewRequest("GET", "https://www.strava.com/api/v3/athlete", nil),
	}

	_ = ParseErrorResponse(resp)

	rewrapped, _ := io.ReadAll(resp.Body)
	if string(rewrapped) != body {
		t.Errorf("Body not properly re-wrapped, got: %s", string(rewrapped))
	}
}

func TestParseErrorResponse_NoRequest(t *testing.T) {
	resp := &http.Response{
		StatusCode: 500,
		Body:       http.NoBody,
	}

	err := ParseErrorResponse(resp)
	if err == nil {
		t.Fatal("Expected error")
	}
	if err.Error() != "upstream Internal Server Error (status 500)" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestStatusCode(t *testing.T) {
	wrapped := fmt.Errorf("fetch athlete: %w", &HTTPError{StatusCode: 503, Status: "Service Unavailable"})
	if got := StatusCode(wrapped); got != 503 {
		t.Errorf("Expected 503, got %d", got)
	}
	if got := StatusCode(fmt.Errorf("plain")); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet([]byte("  hello\n")); got != "hello" {
		t.Errorf("Expected trimmed body, got %q", got)
	}

	long := strings.Repeat("a", 600)
	got := Snippet([]byte(long))
	if len(got) != MaxErrorBodySize+3 {
		t.Errorf("Expected length %d, got %d", MaxErrorBodySize+3, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Cut body should end with ...")
	}
}
