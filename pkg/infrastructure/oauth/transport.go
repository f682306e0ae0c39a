package oauth

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Transport is an http.RoundTripper that authenticates all requests
// using the provided TokenSource.
type Transport struct {
	// Source supplies the token to be used.
	Source oauth2.TokenSource

	// Base is the base RoundTripper used to make the actual HTTP requests.
	// If nil, http.DefaultTransport is used.
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Source == nil {
		return nil, fmt.Errorf("oauth: transport has no token source")
	}

	token, err := t.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("oauth: cannot get token: %w", err)
	}

	// RoundTrippers must not modify the caller's request.
	req2 := cloneRequest(req)
	token.SetAuthHeader(req2)

	// A 401 is handed back untouched; the caller decides what an
	// authorization failure means.
	return base.RoundTrip(req2)
}

// cloneRequest returns a clone of the provided *http.Request.
// The clone is a shallow copy of the struct and its Header map.
func cloneRequest(r *http.Request) *http.Request {
	r2 := new(http.Request)
	*r2 = *r
	r2.Header = make(http.Header, len(r.Header))
	for k, s := range r.Header {
		r2.Header[k] = append([]string(nil), s...)
	}
	return r2
}

// NewHTTPClient returns an http.Client that signs every request with a
// token from source.
func NewHTTPClient(source oauth2.TokenSource, base http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: &Transport{Source: source, Base: base},
	}
}
