// Package metrics holds the Prometheus collectors for outbound Strava calls
// and inbound API requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bike_miles"

// Outcome labels for upstream requests.
const (
	OutcomeOK        = "ok"
	OutcomeFault     = "fault"
	OutcomeError     = "error"
	OutcomeAuthError = "auth_error"
)

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "strava",
		Name:      "requests_total",
		Help:      "Outbound Strava API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "strava",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound Strava API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	activitiesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "strava",
		Name:      "activities_fetched_total",
		Help:      "Activities retrieved across all paginated fetches.",
	})

	apiRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency of inbound HTTP requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamDuration, activitiesFetched, apiRequests)
}

// RecordUpstreamRequest counts one Strava call and observes its latency.
func RecordUpstreamRequest(endpoint, outcome string, d time.Duration) {
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordActivitiesFetched adds n to the fetched activity counter.
func RecordActivitiesFetched(n int) {
	if n <= 0 {
		return
	}
	activitiesFetched.Add(float64(n))
}

// RecordAPIRequest observes one inbound request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	apiRequests.WithLabelValues(method, route, status).Observe(d.Seconds())
}
