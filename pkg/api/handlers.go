package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/fitglue/bike-miles/pkg/domain/yearrange"
	"github.com/fitglue/bike-miles/pkg/framework"
	httputil "github.com/fitglue/bike-miles/pkg/infrastructure/http"
	"github.com/fitglue/bike-miles/pkg/infrastructure/oauth"
	"github.com/fitglue/bike-miles/pkg/integrations/strava"
)

const (
	stateCookie   = "bike_miles_oauth_state"
	stateLifetime = 10 * time.Minute
	callbackPath  = "/api/callback"
)

// Login redirects to the Strava consent page. A random state is stored in a
// short-lived cookie and checked by Callback.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) error {
	state := uuid.NewString()

	authURL, err := h.exchanger.AuthCodeURL(state)
	if errors.Is(err, oauth.ErrNotConfigured) {
		return framework.NewError(http.StatusInternalServerError,
			"Missing STRAVA_CLIENT_ID or STRAVA_REDIRECT_URI environment variables", err)
	}
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     callbackPath,
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	fwCtx.Logger.Info("Redirecting to Strava authorization")
	http.Redirect(w, r, authURL, http.StatusFound)
	return nil
}

// Callback completes the OAuth flow and hands the access token to the front
// page in the query string.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) error {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		return framework.NewError(http.StatusBadRequest, e, nil)
	}

	code := q.Get("code")
	if code == "" {
		return framework.NewError(http.StatusBadRequest, "No code provided", nil)
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		return framework.NewError(http.StatusBadRequest, "Invalid OAuth state", err)
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: callbackPath, MaxAge: -1})

	token, err := h.exchanger.Exchange(r.Context(), code)
	if errors.Is(err, oauth.ErrMissingSecret) {
		return framework.NewError(http.StatusInternalServerError, "Missing STRAVA_CLIENT_SECRET", err)
	}
	if err != nil {
		return framework.NewErrorWithDetails(http.StatusInternalServerError, "Failed to exchange token", err)
	}

	fwCtx.Logger.Info("Exchanged authorization code")
	http.Redirect(w, r, "/?access_token="+url.QueryEscape(token.AccessToken), http.StatusFound)
	return nil
}

// Miles returns the mileage report for ?token=&year=.
func (h *Handler) Miles(w http.ResponseWriter, r *http.Request, fwCtx *framework.FrameworkContext) error {
	q := r.URL.Query()
	token, rawYear := q.Get("token"), q.Get("year")
	if token == "" || rawYear == "" {
		return framework.NewError(http.StatusBadRequest, "Missing token or year parameter", nil)
	}

	year, err := yearrange.ParseYear(rawYear)
	if err != nil {
		return framework.NewError(http.StatusBadRequest, "Year must be an integer.", err)
	}

	report, err := h.svc.Miles.BikeMiles(r.Context(), token, year)
	switch {
	case errors.Is(err, yearrange.ErrInvalidYear):
		return framework.NewErrorWithDetails(http.StatusBadRequest, "Invalid year", err)
	case errors.Is(err, strava.ErrInvalidAccessToken):
		return framework.NewError(http.StatusBadRequest, "Invalid access token", err)
	case err != nil:
		if status := httputil.StatusCode(err); status != 0 {
			fwCtx.Logger.Warn("Strava answered with an HTTP error", "upstream_status", status)
		}
		return framework.NewErrorWithDetails(http.StatusInternalServerError, "An error occurred fetching miles", err)
	}

	framework.WriteJSON(w, http.StatusOK, report)
	return nil
}
