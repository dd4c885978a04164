package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_generation_total",
			Help: "Content generation requests by outcome",
		},
		[]string{"outcome"},
	)

	CacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_total",
			Help: "Generated content cache lookups",
		},
		[]string{"result"},
	)

	AIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Histogram of chat completion latencies",
			Buckets: prometheus.DefBuckets,
		},
	)

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)
