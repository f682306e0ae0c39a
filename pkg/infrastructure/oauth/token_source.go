package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	StravaAuthURL  = "https://www.strava.com/oauth/authorize"
	StravaTokenURL = "https://www.strava.com/oauth/token"

	// StravaScope is sent as a single value: Strava expects a comma separated
	// list where golang.org/x/oauth2 would join multiple scopes with spaces.
	StravaScope = "activity:read_all,profile:read_all"
)

var (
	// ErrNotConfigured is returned when the client id or redirect URI is missing.
	ErrNotConfigured = errors.New("oauth: missing client id or redirect uri")
	// ErrMissingSecret is returned when a code exchange is attempted without a client secret.
	ErrMissingSecret = errors.New("oauth: missing client secret")
)

// NewStaticTokenSource wraps an already issued bearer token. The core only
// ever receives a token string; nothing here refreshes it.
func NewStaticTokenSource(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// ExchangeConfig holds the Strava application credentials.
type ExchangeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// AuthURL and TokenURL default to Strava's endpoints.
	AuthURL  string
	TokenURL string
}

// Exchanger runs the three-legged authorization code flow.
type Exchanger struct {
	cfg        ExchangeConfig
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewExchanger builds an Exchanger. httpClient may be nil.
func NewExchanger(cfg ExchangeConfig, httpClient *http.Client) *Exchanger {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = StravaAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = StravaTokenURL
	}

	return &Exchanger{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{StravaScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Strava requires client_id/secret in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// AuthCodeURL returns the provider consent page URL for state.
func (e *Exchanger) AuthCodeURL(state string) (string, error) {
	if strings.TrimSpace(e.cfg.ClientID) == "" || strings.TrimSpace(e.cfg.RedirectURL) == "" {
		return "", ErrNotConfigured
	}
	return e.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto")), nil
}

// Exchange trades an authorization code for an access token.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if strings.TrimSpace(e.cfg.ClientSecret) == "" {
		return nil, ErrMissingSecret
	}

	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}

	token, err := e.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("exchange authorization code: empty access token")
	}
	return token, nil
}
