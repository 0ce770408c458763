package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts gateway requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total HTTP requests handled by the gateway",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// UpstreamRejections counts non-2xx answers from the commerce API, by
	// status code. A spike here is an upstream incident, not a gateway bug.
	UpstreamRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_rejections_total",
			Help: "Non-2xx responses received from the commerce API",
		},
		[]string{"status"},
	)
)
