package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "podpirate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Account Metrics
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podpirate_registrations_total",
			Help: "Total number of account registrations",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// Content Metrics
	PodcastsPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podpirate_podcasts_published_total",
			Help: "Total number of podcast publish transitions",
		},
	)

	EpisodesPublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podpirate_episodes_published_total",
			Help: "Total number of episode publish transitions",
		},
	)

	PodcastsFlaggedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "podpirate_podcasts_flagged_total",
			Help: "Total number of moderation flags applied",
		},
	)

	CascadeDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_cascade_deletions_total",
			Help: "Total number of cascading deletions",
		},
		[]string{"entity"},
	)

	// Mail Metrics
	MailJobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_mail_jobs_enqueued_total",
			Help: "Total number of mail jobs published to the queue",
		},
		[]string{"kind"},
	)

	MailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_mail_deliveries_total",
			Help: "Total number of mail delivery outcomes",
		},
		[]string{"kind", "outcome"},
	)

	MailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "podpirate_mail_queue_depth",
			Help: "Number of mail jobs waiting in the queue",
		},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_storage_operations_total",
			Help: "Total number of blob storage operations",
		},
		[]string{"operation", "status"},
	)

	SignedURLsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_signed_urls_issued_total",
			Help: "Total number of signed URLs issued",
		},
		[]string{"direction"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podpirate_cache_hits_total",
			Help: "Total number of cache lookups by outcome",
		},
		[]string{"entity", "outcome"},
	)
)

// RecordHTTPRequest records an HTTP request with its latency.
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordLogin records a login attempt outcome ("success" or "failure").
func RecordLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordMailDelivery records a mail delivery outcome per kind.
func RecordMailDelivery(kind, outcome string) {
	MailDeliveriesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheLookup records a cache lookup outcome ("hit" or "miss").
func RecordCacheLookup(entity, outcome string) {
	CacheHitsTotal.WithLabelValues(entity, outcome).Inc()
}
