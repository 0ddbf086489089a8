// Package metrics provides Prometheus metrics for the rapport analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rapport service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Transform Metrics - Raw aggregates turned into scored records
	rowsTransformed *prometheus.CounterVec
	rowsRejected    *prometheus.CounterVec

	// Lookup Metrics - Chemistry lookup builds
	lookupBuildDuration prometheus.Histogram
	lookupPairs         prometheus.Gauge
	lookupCollisions    prometheus.Counter

	// Snapshot Metrics - Published read models
	snapshotPublished      prometheus.Counter
	snapshotLastUnix       prometheus.Gauge
	snapshotBuildDuration  prometheus.Histogram
	snapshotLastDurationMs prometheus.Gauge
	snapshotRecords        *prometheus.GaugeVec

	// Provider Metrics - Aggregation backend calls
	providerFetchDuration *prometheus.HistogramVec
	providerErrors        *prometheus.CounterVec

	// Query Metrics
	leaderboardQueries *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// customRegistry holds only rapport collectors, without the Go runtime defaults.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // package-level Record* helpers need a manager
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager builds and registers every collector.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rapport",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.rowsTransformed = auto.NewCounterVec(
		m.counterOpts("rows_transformed_total", "Aggregate rows scored successfully, by category"),
		[]string{"category"},
	)
	m.rowsRejected = auto.NewCounterVec(
		m.counterOpts("rows_rejected_total", "Aggregate rows skipped as corrupt, by category and reason"),
		[]string{"category", "reason"},
	)

	m.lookupBuildDuration = auto.NewHistogram(
		m.histogramOpts("lookup_build_duration_milliseconds", "Time to build the chemistry lookup in milliseconds"),
	)
	m.lookupPairs = auto.NewGauge(
		m.gaugeOpts("lookup_pairs", "Number of pairs in the most recent chemistry lookup"),
	)
	m.lookupCollisions = auto.NewCounter(
		m.counterOpts("lookup_key_collisions_total", "Pair records replaced by a later record with the same key"),
	)

	m.snapshotPublished = auto.NewCounter(
		m.counterOpts("snapshot_published_total", "Total number of snapshots published"),
	)
	m.snapshotLastUnix = auto.NewGauge(
		m.gaugeOpts("snapshot_last_unix", "Unix time of the last published snapshot"),
	)
	m.snapshotBuildDuration = auto.NewHistogram(
		m.histogramOpts("snapshot_build_duration_milliseconds", "Time to fetch, score and publish a snapshot in milliseconds"),
	)
	m.snapshotLastDurationMs = auto.NewGauge(
		m.gaugeOpts("snapshot_last_duration_milliseconds", "Duration of the last snapshot build in milliseconds"),
	)
	m.snapshotRecords = auto.NewGaugeVec(
		m.gaugeOpts("snapshot_records", "Records held by the current snapshot, by category"),
		[]string{"category"},
	)

	m.providerFetchDuration = auto.NewHistogramVec(
		m.histogramOpts("provider_fetch_duration_milliseconds", "Aggregation provider call latency in milliseconds"),
		[]string{"query"},
	)
	m.providerErrors = auto.NewCounterVec(
		m.counterOpts("provider_errors_total", "Failed aggregation provider calls"),
		[]string{"query"},
	)

	m.leaderboardQueries = auto.NewCounterVec(
		m.counterOpts("leaderboard_queries_total", "Leaderboard selections served, by board"),
		[]string{"board"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Current number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Most recent GC pause time in milliseconds"),
	)
}

// Transform Metrics Functions.

// RecordRowsTransformed adds n successfully scored rows for category.
func RecordRowsTransformed(category string, n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsTransformed.WithLabelValues(category).Add(float64(n))
}

// RecordRowRejected counts one skipped row.
func RecordRowRejected(category, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsRejected.WithLabelValues(category, reason).Inc()
}

// Lookup Metrics Functions.

// RecordLookupBuild records a lookup build and its size.
func RecordLookupBuild(pairs int, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.lookupPairs.Set(float64(pairs))
	globalManager.lookupBuildDuration.Observe(durationMs)
}

// RecordLookupCollision counts a key that appeared more than once.
func RecordLookupCollision() {
	if !globalManager.enabled {
		return
	}
	globalManager.lookupCollisions.Inc()
}

// Snapshot recording.

// RecordSnapshotPublished records a publish and how long the build took.
func RecordSnapshotPublished(unix int64, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotPublished.Inc()
	globalManager.snapshotLastUnix.Set(float64(unix))
	globalManager.snapshotBuildDuration.Observe(durationMs)
	globalManager.snapshotLastDurationMs.Set(durationMs)
}

// UpdateSnapshotRecords sets the record count of category in the current snapshot.
func UpdateSnapshotRecords(category string, n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotRecords.WithLabelValues(category).Set(float64(n))
}

// Provider Metrics Functions.

// RecordProviderFetch records the latency of one provider query.
func RecordProviderFetch(query string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.providerFetchDuration.WithLabelValues(query).Observe(durationMs)
}

// RecordProviderError counts a failed provider query.
func RecordProviderError(query string) {
	if !globalManager.enabled {
		return
	}
	globalManager.providerErrors.WithLabelValues(query).Inc()
}

// RecordLeaderboardQuery counts a leaderboard selection.
func RecordLeaderboardQuery(board string) {
	if !globalManager.enabled {
		return
	}
	globalManager.leaderboardQueries.WithLabelValues(board).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest counts a served request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts a failure in component, labelled by a stable code.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// Runtime sampling.

// UpdateSystemMemoryUsage sets the heap-in-use gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the latest GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// SetEnabled turns recording through the package-level functions on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the registry behind GET /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
