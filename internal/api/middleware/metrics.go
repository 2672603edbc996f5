// Package middleware provides Echo middleware for meli-lister.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/meli-lister/internal/metrics"
)

// operationalPaths are probe, scrape and documentation paths. They are
// excluded from request metrics and never carry a session.
var operationalPaths = map[string]struct{}{
	"/metrics":      {},
	"/healthz":      {},
	"/readyz":       {},
	"/docs":         {},
	"/openapi.json": {},
	"/openapi.yaml": {},
}

// healthGauges maps probe paths to their up/down gauge.
var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Operational reports whether c targets a probe, scrape or documentation
// route. It satisfies echo's middleware.Skipper.
func Operational(c echo.Context) bool {
	_, ok := operationalPaths[c.Path()]
	return ok
}

// unmatchedRoute labels requests that matched no route, keeping the path
// label bounded.
const unmatchedRoute = "unmatched"

// Metrics returns Echo middleware that records request duration and status
// by route. Probe paths only update their gauge.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}

			if _, skip := operationalPaths[route]; skip {
				err := next(c)
				updateHealthGauge(route, responseStatus(c, err))
				return err
			}

			start := time.Now()

			err := next(c)

			status := strconv.Itoa(responseStatus(c, err))
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, route, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, route, status).
				Inc()

			return err
		}
	}
}

// responseStatus returns the status the client will see. An error not yet
// handled by the error handler is counted with the status it maps to.
func responseStatus(c echo.Context, err error) int {
	if err != nil && !c.Response().Committed {
		status, _ := classify(err)
		return status
	}
	return c.Response().Status
}

func updateHealthGauge(path string, status int) {
	gauge, ok := healthGauges[path]
	if !ok {
		return
	}

	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
