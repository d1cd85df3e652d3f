package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_refresh_total",
			Help: "Total number of feed refreshes (count)",
		},
		[]string{"frame", "status"},
	)

	RefreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_refresh_duration_ms",
			Help:    "Feed refresh duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"frame"},
	)

	FeedMessages = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_messages",
			Help: "Number of messages held for a time frame after the last refresh (count)",
		},
		[]string{"frame"},
	)

	ExtractionResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extraction_results_total",
			Help: "Total number of classified response bodies (count)",
		},
		[]string{"kind"},
	)

	ExtractedMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_messages_total",
			Help: "Total number of message records produced by extraction (count)",
		},
	)

	FetchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fetch_attempts_total",
			Help: "Total number of upstream fetch attempts (count)",
		},
		[]string{"endpoint", "status"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_fetch_duration_ms",
			Help:    "Upstream fetch duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"endpoint"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation", "reason"},
	)

	StorageLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_loads_total",
			Help: "Total number of storage snapshot loads (count)",
		},
		[]string{"status"},
	)

	CacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of feed cache operations (count)",
		},
		[]string{"operation", "status"},
	)

	PublishedMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "published_messages_total",
			Help: "Total number of message records published (count)",
		},
		[]string{"broker", "status"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Kafka message write duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"route", "method", "status"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RefreshTotal,
			RefreshDuration,
			FeedMessages,
			ExtractionResultsTotal,
			ExtractedMessagesTotal,
			FetchAttemptsTotal,
			FetchDuration,
			RetryAttemptsTotal,
			StorageLoadsTotal,
			CacheOperationsTotal,
			PublishedMessagesTotal,
			KafkaWriteDuration,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RateLimitRequestsTotal,
			HTTPRequestDuration,
		)
	})
}

func ObserveRefreshDuration(frame string, duration time.Duration) {
	RefreshDuration.WithLabelValues(frame).Observe(float64(duration.Milliseconds()))
}

func IncExtractionResult(kind string, messages int) {
	ExtractionResultsTotal.WithLabelValues(kind).Inc()
	ExtractedMessagesTotal.Add(float64(messages))
}

func IncFetchAttempt(endpoint, status string) {
	FetchAttemptsTotal.WithLabelValues(endpointLabel(endpoint), status).Inc()
}

func ObserveFetchDuration(endpoint string, duration time.Duration) {
	FetchDuration.WithLabelValues(endpointLabel(endpoint)).Observe(float64(duration.Milliseconds()))
}

func IncRetryAttempt(operation, reason string) {
	RetryAttemptsTotal.WithLabelValues(operation, reason).Inc()
}

func IncStorageLoad(status string) {
	StorageLoadsTotal.WithLabelValues(status).Inc()
}

func IncCacheOperation(operation, status string) {
	CacheOperationsTotal.WithLabelValues(operation, status).Inc()
}

func IncPublished(broker, status string) {
	PublishedMessagesTotal.WithLabelValues(broker, status).Inc()
}

func ObserveKafkaWriteDuration(topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}

func ObserveHTTPRequest(route, method, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, method, status).Observe(float64(duration.Milliseconds()))
}

func endpointLabel(endpoint string) string {
	if endpoint == "" {
		return "latest"
	}
	return endpoint
}
