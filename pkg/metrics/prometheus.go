// Package metrics provides Prometheus metrics for the padel ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ranking service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Source metrics - spreadsheet fetch health
	sheetFetches      prometheus.Counter
	sheetFetchErrors  prometheus.Counter
	sheetFetchLatency prometheus.Histogram
	sourceRows        prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter

	// Ranking metrics - pipeline activity
	dedupeCollapsed    prometheus.Counter
	snapshotRecomputes *prometheus.CounterVec
	snapshotSkips      *prometheus.CounterVec
	movementFlags      *prometheus.CounterVec

	// Store metrics - durable snapshot persistence
	storeUpsertLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram
	storeErrors        prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "padelrank",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sheetFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sheet_fetches_total",
		Help:      "Total number of spreadsheet fetch attempts",
	})

	m.sheetFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sheet_fetch_errors_total",
		Help:      "Total number of failed spreadsheet fetches (stale data served instead)",
	})

	m.sheetFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sheet_fetch_latency_milliseconds",
		Help:      "Histogram of spreadsheet fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.sourceRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_rows",
		Help:      "Number of session rows returned by the last successful fetch",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_cache_hits_total",
		Help:      "Total number of requests served from the TTL cache",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_cache_misses_total",
		Help:      "Total number of requests that triggered an upstream fetch",
	})

	m.dedupeCollapsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dedupe_collapsed_rows_total",
		Help:      "Total number of same-day session rows collapsed by deduplication",
	})

	m.snapshotRecomputes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "snapshot_recomputes_total",
			Help:      "Total number of movement recomputations caused by a ranking hash change",
		},
		[]string{"scope"},
	)

	m.snapshotSkips = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "snapshot_skips_total",
			Help:      "Total number of tracker calls short-circuited by an unchanged ranking hash",
		},
		[]string{"scope"},
	)

	m.movementFlags = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "movement_flags_total",
			Help:      "Total number of movement flags assigned, by direction",
		},
		[]string{"direction"},
	)

	m.storeUpsertLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_upsert_latency_milliseconds",
		Help:      "Durable store upsert latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Durable store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of durable store errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers operating on the global manager.

// RecordSheetFetch records a spreadsheet fetch attempt and its latency.
func RecordSheetFetch(latencyMs float64) {
	globalManager.sheetFetches.Inc()
	globalManager.sheetFetchLatency.Observe(latencyMs)
}

// RecordSheetFetchError records a failed spreadsheet fetch.
func RecordSheetFetchError() {
	globalManager.sheetFetchErrors.Inc()
}

// UpdateSourceRows sets the row count of the last successful fetch.
func UpdateSourceRows(count int) {
	globalManager.sourceRows.Set(float64(count))
}

// RecordCacheHit records a request served from the TTL cache.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss records a request that went upstream.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordDedupeCollapsed records rows collapsed by same-day deduplication.
func RecordDedupeCollapsed(count int) {
	globalManager.dedupeCollapsed.Add(float64(count))
}

// RecordSnapshotRecompute records a movement recomputation for a scope.
func RecordSnapshotRecompute(scope string) {
	globalManager.snapshotRecomputes.WithLabelValues(scope).Inc()
}

// RecordSnapshotSkip records a hash-unchanged short circuit for a scope.
func RecordSnapshotSkip(scope string) {
	globalManager.snapshotSkips.WithLabelValues(scope).Inc()
}

// RecordMovementFlag records an assigned movement direction.
func RecordMovementFlag(direction string) {
	globalManager.movementFlags.WithLabelValues(direction).Inc()
}

// RecordStoreUpsertLatency records a durable store upsert latency.
func RecordStoreUpsertLatency(latencyMs float64) {
	globalManager.storeUpsertLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records a durable store query latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordStoreError records a durable store error.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
