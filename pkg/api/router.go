// Package api serves the mileage report over HTTP together with the Strava
// OAuth login flow and the static front page.
package api

import (
	"embed"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitglue/bike-miles/pkg/bootstrap"
	"github.com/fitglue/bike-miles/pkg/framework"
	"github.com/fitglue/bike-miles/pkg/infrastructure/metrics"
	"github.com/fitglue/bike-miles/pkg/infrastructure/oauth"
	"github.com/fitglue/bike-miles/pkg/infrastructure/sentry"
)

//go:embed static/index.html
var static embed.FS

// Handler holds the dependencies of the HTTP endpoints.
type Handler struct {
	svc       *bootstrap.Service
	exchanger *oauth.Exchanger
}

// NewHandler builds a Handler. exchanger runs the OAuth code flow; it is
// usually built from svc.Config.OAuth with NewExchanger.
func NewHandler(svc *bootstrap.Service, exchanger *oauth.Exchanger) *Handler {
	return &Handler{svc: svc, exchanger: exchanger}
}

// NewExchanger builds the OAuth exchanger from the service configuration.
func NewExchanger(cfg *bootstrap.Config, httpClient *http.Client) *oauth.Exchanger {
	return oauth.NewExchanger(oauth.ExchangeConfig{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURI,
	}, httpClient)
}

// Routes returns the router with every endpoint and middleware mounted.
func (h *Handler) Routes() http.Handler {
	cfg := h.svc.Config.Server

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(sentry.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{framework.ExecutionIDHeader},
		MaxAge:         86400,
	}))
	r.Use(PrometheusMetrics)

	r.Get("/", h.Index)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.RateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					framework.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
				}),
			))
		}
		r.Method(http.MethodGet, "/login", framework.Wrap("login", h.svc, h.Login))
		r.Method(http.MethodGet, "/callback", framework.Wrap("callback", h.svc, h.Callback))
		r.Method(http.MethodGet, "/miles", framework.Wrap("miles", h.svc, h.Miles))
	})

	return r
}

// Index serves the front page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// PrometheusMetrics records the duration and status of every request under
// its route pattern.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}
