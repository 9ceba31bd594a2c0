// Package metrics registers the service's Prometheus collectors.
// HTTP paths are labelled by route template so ids never become label values.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	sweepPassesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signage_sweeper_passes_total",
		Help: "Completed expiration sweeper passes.",
	})

	sweepArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signage_sweeper_archived_slides_total",
		Help: "Slides archived by the expiration sweeper.",
	})

	sweepFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signage_sweeper_failures_total",
		Help: "Slides the expiration sweeper failed to archive, plus failed candidate queries.",
	})

	displayConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signage_display_ws_connections",
		Help: "Open display websocket connections.",
	})

	displayInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_display_invalidations_total",
			Help: "Display invalidation signals by origin (local or remote).",
		},
		[]string{"source"},
	)
)

// Middleware records request count and latency per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SweepFinished records one sweeper pass.
func SweepFinished(archived, failures int) {
	sweepPassesTotal.Inc()
	sweepArchivedTotal.Add(float64(archived))
	sweepFailuresTotal.Add(float64(failures))
}

// DisplayConnected adjusts the open websocket gauge by delta.
func DisplayConnected(delta int) {
	displayConnections.Add(float64(delta))
}

// DisplayInvalidated counts one invalidation from source.
func DisplayInvalidated(source string) {
	displayInvalidationsTotal.WithLabelValues(source).Inc()
}
