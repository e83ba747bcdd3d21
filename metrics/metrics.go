package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Business metrics for the recommendation pipeline
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_source_fetches_total",
			Help: "Total number of product source fetch attempts",
		},
		[]string{"source", "status"},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation responses served",
		},
		[]string{"source", "stale"},
	)

	// Cache metrics
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of cache manager lookups",
		},
		[]string{"key", "outcome"},
	)

	CacheCoalescedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_coalesced_fetches_total",
			Help: "Number of fetches that joined an in-flight fetch instead of issuing their own",
		},
	)

	// Diagnostics metrics
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "health_probes_total",
			Help: "Total number of health probes by outcome",
		},
		[]string{"target", "status"},
	)

	// NATS metrics
	NatsMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)

	// Application health metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "environment"},
	)
)

// Initialize metrics with default values
func Init(serviceName, version, environment string) {
	ApplicationInfo.WithLabelValues(serviceName, version, environment).Set(1)
}
