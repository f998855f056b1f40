package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackneedle_http_requests_total",
			Help: "HTTP requests served, by method, registered route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// Catalog pages dominate traffic and are cheap; the bucket spread
	// bottoms out well below the default 5ms so they still resolve.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blackneedle_http_request_duration_seconds",
			Help:    "HTTP request latency by method and registered route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	ProductViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blackneedle_product_views_total",
			Help: "Product detail pages served with a view counter bump",
		},
	)
)
