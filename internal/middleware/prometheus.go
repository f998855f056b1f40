package middleware

import (
	"strconv"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/metrics"

	"github.com/labstack/echo/v4"
)

// PrometheusMetrics records a counter and a latency sample per request,
// labelled with the registered route pattern rather than the raw URL so
// /cat/:id stays a single series. Scrapes of /metrics itself and hits
// on unregistered paths are not recorded.
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Path()
		if route == "" || route == "/metrics" {
			return next(c)
		}

		start := time.Now()
		err := next(c)

		method := c.Request().Method

		metrics.HTTPRequestsTotal.WithLabelValues(
			method,
			route,
			strconv.Itoa(c.Response().Status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			method,
			route,
		).Observe(time.Since(start).Seconds())

		return err
	}
}
