// Package mocks provides an in-process fake of the Strava API for tests.
package mocks

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// Response is a canned HTTP response.
type Response struct {
	Status int
	Body   string
}

// AuthorizationError is Strava's response to a bad or expired token.
var AuthorizationError = Response{
	Status: http.StatusUnauthorized,
	Body:   `{"message":"Authorization Error","errors":[{"resource":"Athlete","field":"access_token","code":"invalid"}]}`,
}

// ActivityRequest records the query of one /athlete/activities call.
type ActivityRequest struct {
	Page    int
	PerPage int
	After   string
	Before  string
	Auth    string
}

// --- Fake Strava API ---
type FakeStrava struct {
	// Athlete is served for GET /athlete. Defaults to an athlete with no bikes.
	Athlete Response
	// Pages are served in order for GET /athlete/activities?page=N (1-based).
	// Requests past the end get an empty list.
	Pages []Response

	// AthleteFunc / ActivitiesFunc override the canned responses when set.
	AthleteFunc    func(w http.ResponseWriter, r *http.Request)
	ActivitiesFunc func(w http.ResponseWriter, r *http.Request)

	mu            sync.Mutex
	athleteCalls  int
	activityCalls []ActivityRequest
	server        *httptest.Server
}

// NewFakeStrava starts a fake serving athlete and pages.
func NewFakeStrava(athlete Response, pages ...Response) *FakeStrava {
	f := &FakeStrava{Athlete: athlete, Pages: pages}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// URL is the base URL to configure the client with.
func (f *FakeStrava) URL() string {
	return f.server.URL
}

// Close shuts the server down.
func (f *FakeStrava) Close() {
	f.server.Close()
}

// AthleteCalls returns the number of GET /athlete requests received.
func (f *FakeStrava) AthleteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.athleteCalls
}

// ActivityRequests returns every GET /athlete/activities request received.
func (f *FakeStrava) ActivityRequests() []ActivityRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ActivityRequest(nil), f.activityCalls...)
}

func (f *FakeStrava) serve(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/athlete":
		f.mu.Lock()
		f.athleteCalls++
		f.mu.Unlock()

		if f.AthleteFunc != nil {
			f.AthleteFunc(w, r)
			return
		}
		athlete := f.Athlete
		if athlete.Body == "" {
			athlete = Response{Status: http.StatusOK, Body: `{"id":1,"bikes":[]}`}
		}
		write(w, athlete)

	case "/athlete/activities":
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))

		f.mu.Lock()
		f.activityCalls = append(f.activityCalls, ActivityRequest{
			Page:    page,
			PerPage: perPage,
			After:   q.Get("after"),
			Before:  q.Get("before"),
			Auth:    r.Header.Get("Authorization"),
		})
		f.mu.Unlock()

		if f.ActivitiesFunc != nil {
			f.ActivitiesFunc(w, r)
			return
		}
		if page >= 1 && page <= len(f.Pages) {
			write(w, f.Pages[page-1])
			return
		}
		write(w, Response{Status: http.StatusOK, Body: `[]`})

	default:
		write(w, Response{Status: http.StatusNotFound, Body: `{"message":"Record Not Found","errors":[{"resource":"resource","field":"path","code":"invalid"}]}`})
	}
}

func write(w http.ResponseWriter, resp Response) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}

// OK is a 200 response with body.
func OK(body string) Response {
	return Response{Status: http.StatusOK, Body: body}
}
