// Package metrics defines Prometheus metrics for meli-lister.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meli_lister"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last /healthz probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last /readyz probe succeeded (1) or failed (0).",
	})
)

// Marketplace API metrics.
var (
	MarketplaceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marketplace_requests_total",
		Help:      "Total outbound MercadoLibre API requests by endpoint and status.",
	}, []string{"method", "endpoint", "status"})

	MarketplaceRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "marketplace_request_duration_seconds",
		Help:      "Duration of outbound MercadoLibre API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	MarketplaceDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "marketplace_daily_usage",
		Help:      "Current MercadoLibre API call count within the rolling 24-hour window.",
	})

	MarketplaceDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marketplace_daily_limit_hits_total",
		Help:      "Total number of times the daily API limit was reached.",
	})
)

// Auth flow metrics.
var (
	LoginsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_started_total",
		Help:      "Total number of login flows started.",
	})

	AuthorizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorizations_total",
		Help:      "Total authorization callbacks by result.",
	}, []string{"result"})
)

// Listing metrics.
var (
	ListingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings accepted by the marketplace.",
	})

	ListingsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_rejected_total",
		Help:      "Total number of listings rejected by the marketplace.",
	})

	ActiveListingsFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "active_listings_items_fetched",
		Help:      "Number of item detail lookups per active-listings view.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})
)

// Session metrics.
var (
	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of browser sessions created.",
	})

	SessionsPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_purged_total",
		Help:      "Total number of expired sessions removed by the janitor.",
	})
)
