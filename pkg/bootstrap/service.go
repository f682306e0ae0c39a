package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fitglue/bike-miles/pkg/infrastructure/sentry"
	"github.com/fitglue/bike-miles/pkg/mileage"
)

// Service holds initialized dependencies
type Service struct {
	Config *Config
	Logger *slog.Logger
	Miles  *mileage.Service
}

// NewService wires the mileage service from cfg. transport may be nil to use
// http.DefaultTransport for Strava calls.
func NewService(cfg *Config, logger *slog.Logger, transport http.RoundTripper) (*Service, error) {
	if logger == nil {
		logger = DiscardLogger()
	}

	logger.Info("Initializing service",
		"strava_base_url", cfg.Strava.BaseURL,
		"page_size", cfg.Strava.PageSize,
		"timeout", cfg.Strava.Timeout,
	)

	if err := sentry.Init(sentry.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
	}, logger); err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}

	sources := mileage.StravaSourceFactory(cfg.Strava.Client(), transport, logger)
	return &Service{
		Config: cfg,
		Logger: logger,
		Miles:  mileage.NewService(sources, logger),
	}, nil
}
