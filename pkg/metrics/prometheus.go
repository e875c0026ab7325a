// Package metrics provides Prometheus metrics for the devil-match dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dataset load results.
const (
	LoadOK      = "ok"
	LoadMissing = "missing"
	LoadFailed  = "failed"
	LoadDemo    = "demo"
)

// Upload results.
const (
	UploadOK       = "ok"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// latencyBuckets are in milliseconds; dataset loads of large workbooks take seconds.
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // shared default buckets

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Dataset
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram
	datasetRows         prometheus.Gauge
	datasetPlayers      prometheus.Gauge
	datasetMatches      prometheus.Gauge
	datasetLoadedUnix   prometheus.Gauge

	// Cache
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheInvalidations prometheus.Counter

	// Dashboard
	uploads        *prometheus.CounterVec
	exportRows     prometheus.Counter
	renderDuration *prometheus.HistogramVec
	chartFailures  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "devilmatch",
		subsystem:        "dashboard",
		histogramBuckets: latencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.datasetLoads = auto.NewCounterVec(
		m.counterOpts("dataset_loads_total", "Dataset loads by result (ok, missing, failed, demo)"),
		[]string{"result"},
	)
	m.datasetLoadDuration = auto.NewHistogram(
		m.histogramOpts("dataset_load_duration_milliseconds", "Time to locate and decode the data file"),
	)
	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows", "Rows in the cached dataset"))
	m.datasetPlayers = auto.NewGauge(m.gaugeOpts("dataset_players", "Distinct players in the cached dataset"))
	m.datasetMatches = auto.NewGauge(m.gaugeOpts("dataset_matches", "Distinct matches in the cached dataset"))
	m.datasetLoadedUnix = auto.NewGauge(m.gaugeOpts("dataset_loaded_unix", "Unix time the cached dataset was loaded"))

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Dataset cache hits"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Dataset cache misses (cold or expired)"))
	m.cacheInvalidations = auto.NewCounter(m.counterOpts("cache_invalidations_total", "Dataset cache invalidations"))

	m.uploads = auto.NewCounterVec(
		m.counterOpts("uploads_total", "Uploads by result (ok, rejected, failed)"),
		[]string{"result"},
	)
	m.exportRows = auto.NewCounter(m.counterOpts("export_rows_total", "Rows written to CSV exports"))
	m.renderDuration = auto.NewHistogramVec(
		m.histogramOpts("render_duration_milliseconds", "Time to build a view model, by view"),
		[]string{"view"},
	)
	m.chartFailures = auto.NewCounterVec(
		m.counterOpts("chart_render_failures_total", "Charts that fell back to the placeholder"),
		[]string{"chart"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordDatasetLoad records a dataset load and its duration.
func RecordDatasetLoad(result string, durationMs float64) {
	globalManager.datasetLoads.WithLabelValues(result).Inc()
	globalManager.datasetLoadDuration.Observe(durationMs)
}

// UpdateDatasetSize sets the dataset gauges.
func UpdateDatasetSize(rows, players, matches int, loadedUnix int64) {
	globalManager.datasetRows.Set(float64(rows))
	globalManager.datasetPlayers.Set(float64(players))
	globalManager.datasetMatches.Set(float64(matches))
	globalManager.datasetLoadedUnix.Set(float64(loadedUnix))
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheInvalidation increments the cache invalidation counter.
func RecordCacheInvalidation() {
	globalManager.cacheInvalidations.Inc()
}

// RecordUpload records an upload by result.
func RecordUpload(result string) {
	globalManager.uploads.WithLabelValues(result).Inc()
}

// RecordExportRows adds rows written by a CSV export.
func RecordExportRows(rows int) {
	globalManager.exportRows.Add(float64(rows))
}

// RecordRenderDuration records view model build time in milliseconds.
func RecordRenderDuration(view string, durationMs float64) {
	globalManager.renderDuration.WithLabelValues(view).Observe(durationMs)
}

// RecordChartFailure counts a chart that fell back to the placeholder.
func RecordChartFailure(chart string) {
	globalManager.chartFailures.WithLabelValues(chart).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
