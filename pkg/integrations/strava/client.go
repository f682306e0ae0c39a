package strava

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/fitglue/bike-miles/pkg/domain/yearrange"
	httputil "github.com/fitglue/bike-miles/pkg/infrastructure/http"
	"github.com/fitglue/bike-miles/pkg/infrastructure/metrics"
	"github.com/fitglue/bike-miles/pkg/infrastructure/oauth"
)

const (
	DefaultBaseURL  = "https://www.strava.com/api/v3"
	DefaultPageSize = 200
	DefaultTimeout  = 10 * time.Second

	// authorizationErrorMessage is the fault message Strava returns for a bad token.
	authorizationErrorMessage = "Authorization Error"

	endpointAthlete    = "athlete"
	endpointActivities = "athlete_activities"
)

var (
	// ErrInvalidAccessToken is returned when the athlete probe is rejected.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrMalformedResponse is returned when a body is neither a list nor a fault object.
	ErrMalformedResponse = errors.New("malformed response")
)

// Config is the client's construction-time configuration.
type Config struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
}

// DefaultConfig returns the configuration used against the public Strava API.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		PageSize: DefaultPageSize,
		Timeout:  DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Client is an API client for the Strava v3 API, bound to one athlete's token.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a Strava client that authenticates with source.
// base may be nil to use http.DefaultTransport.
func NewClient(cfg Config, source oauth2.TokenSource, base http.RoundTripper, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := oauth.NewHTTPClient(source, base)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		cfg:    cfg,
		client: httpClient,
		logger: logger.With("component", "strava"),
	}
}

// doGet performs a GET and returns the raw body. 4xx/5xx responses are not
// errors here: Strava reports most failures as a JSON fault body.
func (c *Client) doGet(ctx context.Context, endpoint, path string, query url.Values) ([]byte, *http.Response, error) {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, metrics.OutcomeError, time.Since(start))
		return nil, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, metrics.OutcomeError, time.Since(start))
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return body, resp, nil
}

// GetAthlete fetches the authenticated athlete's profile. It doubles as the
// credential probe: an authorization fault yields ErrInvalidAccessToken.
func (c *Client) GetAthlete(ctx context.Context) (*Athlete, error) {
	start := time.Now()
	body, resp, err := c.doGet(ctx, endpointAthlete, "/athlete", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch athlete: %w", err)
	}

	var payload struct {
		Athlete
		Fault
	}
	switch payloadKind(body) {
	case '{':
	case '[':
		if resp.StatusCode == http.StatusUnauthorized {
			metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeAuthError, time.Since(start))
			return nil, fmt.Errorf("%w: status %d", ErrInvalidAccessToken, resp.StatusCode)
		}
		metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeFault, time.Since(start))
		c.logger.Warn("Athlete probe returned a list instead of a profile", "status", resp.StatusCode)
		return &Athlete{}, nil
	default:
		metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("fetch athlete: %w", responseError(resp, body))
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("fetch athlete: %w: %v", ErrMalformedResponse, err)
	}

	if payload.Message == authorizationErrorMessage || resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeAuthError, time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccessToken, payload.Fault.Error())
	}

	if payload.Message != "" {
		// Only authorization faults are fatal on the probe; anything else
		// leaves us with a profile that has no bikes.
		metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeFault, time.Since(start))
		c.logger.Warn("Athlete probe returned a fault", "message", payload.Message, "status", resp.StatusCode)
		return &Athlete{}, nil
	}

	metrics.RecordUpstreamRequest(endpointAthlete, metrics.OutcomeOK, time.Since(start))
	return &payload.Athlete, nil
}

// ActivitiesParams are the query parameters for one activity list page.
type ActivitiesParams struct {
	Page    int
	PerPage int
	After   int64
	Before  int64
}

func (p ActivitiesParams) values() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.After != 0 {
		q.Set("after", strconv.FormatInt(p.After, 10))
	}
	if p.Before != 0 {
		q.Set("before", strconv.FormatInt(p.Before, 10))
	}
	return q
}

// Page is one response of the activity list endpoint: either activities or a fault.
type Page struct {
	Activities []Activity
	Fault      *Fault
}

// ListActivities fetches a single page of the athlete's activities.
func (c *Client) ListActivities(ctx context.Context, params ActivitiesParams) (*Page, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = c.cfg.PageSize
	}

	start := time.Now()
	body, resp, err := c.doGet(ctx, endpointActivities, "/athlete/activities", params.values())
	if err != nil {
		return nil, err
	}

	switch payloadKind(body) {
	case '[':
		var activities []Activity
		if err := json.Unmarshal(body, &activities); err != nil {
			metrics.RecordUpstreamRequest(endpointActivities, metrics.OutcomeError, time.Since(start))
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		metrics.RecordUpstreamRequest(endpointActivities, metrics.OutcomeOK, time.Since(start))
		return &Page{Activities: activities}, nil
	case '{':
		var fault Fault
		if err := json.Unmarshal(body, &fault); err != nil {
			metrics.RecordUpstreamRequest(endpointActivities, metrics.OutcomeError, time.Since(start))
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		metrics.RecordUpstreamRequest(endpointActivities, metrics.OutcomeFault, time.Since(start))
		return &Page{Fault: &fault}, nil
	default:
		metrics.RecordUpstreamRequest(endpointActivities, metrics.OutcomeError, time.Since(start))
		return nil, responseError(resp, body)
	}
}

// FetchActivities walks every page of activities that started within r and
// returns them in API order.
//
// Pagination stops at the first empty page. A fault page also stops it
// without an error: Strava's rate-limit and server faults are therefore
// indistinguishable from the end of data here. Transport failures abort the
// whole fetch and no partial result is returned.
func (c *Client) FetchActivities(ctx context.Context, r yearrange.Range) ([]Activity, error) {
	var all []Activity
	for page := 1; ; page++ {
		c.logger.Info("Retrieving page of activities", "page", page)

		result, err := c.ListActivities(ctx, ActivitiesParams{
			Page:    page,
			PerPage: c.cfg.PageSize,
			After:   r.Start,
			Before:  r.End,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch activities page %d: %w", page, err)
		}

		if result.Fault != nil {
			c.logger.Warn("Activity page returned a fault, treating as end of data",
				"page", page, "message", result.Fault.Message)
			break
		}
		if len(result.Activities) == 0 {
			break
		}
		all = append(all, result.Activities...)
	}

	metrics.RecordActivitiesFetched(len(all))
	c.logger.Info("Retrieved activities", "count", len(all))
	return all, nil
}

// payloadKind returns the first significant byte of a JSON body, or 0.
func payloadKind(body []byte) byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0
	}
	switch trimmed[0] {
	case '[', '{':
		return trimmed[0]
	}
	return 0
}

// responseError describes a body that is not a JSON list or object.
func responseError(resp *http.Response, body []byte) error {
	if err := httputil.ParseErrorResponse(resp); err != nil {
		return err
	}
	return fmt.Errorf("%w: %q", ErrMalformedResponse, httputil.Snippet(body))
}
