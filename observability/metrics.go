// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discuss",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discuss",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discuss",
		Name:      "post_like_toggles_total",
		Help:      "Like toggles by resulting action (like, unlike).",
	}, []string{"action"})

	UsersProvisioned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "discuss",
		Name:      "users_provisioned_total",
		Help:      "Users created from the legacy directory on first login.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "discuss",
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the per-client rate guard.",
	})
)
