// Package mileage wires the year resolver, the Strava fetcher and the
// aggregator into a single request: one token, one year, one report.
package mileage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	domain "github.com/fitglue/bike-miles/pkg/domain/mileage"
	"github.com/fitglue/bike-miles/pkg/domain/yearrange"
	"github.com/fitglue/bike-miles/pkg/infrastructure/oauth"
	"github.com/fitglue/bike-miles/pkg/integrations/strava"
)

// ActivitySource is the subset of the Strava client the service needs.
type ActivitySource interface {
	GetAthlete(ctx context.Context) (*strava.Athlete, error)
	FetchActivities(ctx context.Context, r yearrange.Range) ([]strava.Activity, error)
}

// SourceFactory builds an ActivitySource authenticated with token.
type SourceFactory func(token string) ActivitySource

// StravaSourceFactory returns a factory producing Strava clients that share
// cfg, transport and logger.
func StravaSourceFactory(cfg strava.Config, transport http.RoundTripper, logger *slog.Logger) SourceFactory {
	return func(token string) ActivitySource {
		return strava.NewClient(cfg, oauth.NewStaticTokenSource(token), transport, logger)
	}
}

// Service computes per-bike mileage reports for one access token at a time.
type Service struct {
	sources SourceFactory
	logger  *slog.Logger
}

// NewService returns a Service that opens a source per request with sources.
func NewService(sources SourceFactory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sources: sources,
		logger:  logger.With("component", "mileage"),
	}
}

// BikeMiles computes the per-bike mileage of year for the athlete owning token.
//
// The year is validated before any request is made. An invalid token surfaces
// as strava.ErrInvalidAccessToken, in which case no activities are requested.
func (s *Service) BikeMiles(ctx context.Context, token string, year int) (*domain.Report, error) {
	r, err := yearrange.Resolve(year)
	if err != nil {
		return nil, err
	}

	source := s.sources(token)

	s.logger.Info("Retrieving athlete", "year", year)
	athlete, err := source.GetAthlete(ctx)
	if err != nil {
		return nil, err
	}
	names := domain.NameLookup(athlete.Bikes)

	activities, err := source.FetchActivities(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("fetch activities for %d: %w", year, err)
	}

	bikes := domain.Aggregate(activities, names)
	s.logger.Info("Aggregated mileage", "year", year, "activities", len(activities), "bikes", len(bikes))

	return &domain.Report{Year: year, Miles: bikes}, nil
}
