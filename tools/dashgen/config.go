package main

import "errors"

// KnownMetrics is the set of metric names exported by meli-lister plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"meli_lister_http_request_duration_seconds":        true,
	"meli_lister_http_request_duration_seconds_bucket": true,
	"meli_lister_http_requests_total":                  true,

	// Health metrics.
	"meli_lister_healthz_up": true,
	"meli_lister_readyz_up":  true,

	// Marketplace API metrics.
	"meli_lister_marketplace_requests_total":                  true,
	"meli_lister_marketplace_request_duration_seconds":        true,
	"meli_lister_marketplace_request_duration_seconds_bucket": true,
	"meli_lister_marketplace_daily_usage":                     true,
	"meli_lister_marketplace_daily_limit_hits_total":          true,

	// Auth flow metrics.
	"meli_lister_logins_started_total": true,
	"meli_lister_authorizations_total": true,

	// Listing metrics.
	"meli_lister_listings_created_total":               true,
	"meli_lister_listings_rejected_total":              true,
	"meli_lister_active_listings_items_fetched":        true,
	"meli_lister_active_listings_items_fetched_bucket": true,

	// Session metrics.
	"meli_lister_sessions_created_total": true,
	"meli_lister_sessions_purged_total":  true,

	// Recording rules.
	"meli_lister:http_requests:rate5m":        true,
	"meli_lister:http_errors:rate5m":          true,
	"meli_lister:marketplace_requests:rate5m": true,
	"meli_lister:marketplace_errors:rate5m":   true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
