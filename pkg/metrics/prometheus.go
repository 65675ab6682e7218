// Package metrics provides Prometheus metrics for the medal dashboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Histogram buckets in milliseconds; aggregations over a few thousand rows
// complete well under a millisecond, renders take tens of milliseconds.
var defaultBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Dataset
	datasetRows         *prometheus.GaugeVec
	datasetLoadDuration prometheus.Gauge
	datasetSports       prometheus.Gauge

	// Aggregation and rendering
	aggregationDuration *prometheus.HistogramVec
	renderDuration      *prometheus.HistogramVec
	renderErrors        *prometheus.CounterVec
	forecastDegenerate  prometheus.Counter
	filterSelections    *prometheus.CounterVec
	exportsTotal        prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "medaldash",
		subsystem:        "dashboard",
		histogramBuckets: defaultBuckets,
		constLabels:      map[string]string{},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.datasetRows = auto.NewGaugeVec(
		m.gaugeOpts("dataset_rows", "Rows held at each dataset load stage (raw, kept, unique)"),
		[]string{"stage"},
	)
	m.datasetLoadDuration = auto.NewGauge(m.gaugeOpts("dataset_load_duration_milliseconds", "Duration of the startup dataset load"))
	m.datasetSports = auto.NewGauge(m.gaugeOpts("dataset_sports", "Distinct sports in the working dataset"))

	m.aggregationDuration = auto.NewHistogramVec(
		m.histogramOpts("aggregation_duration_milliseconds", "Time spent computing one chart aggregate"),
		[]string{"chart"},
	)
	m.renderDuration = auto.NewHistogramVec(
		m.histogramOpts("render_duration_milliseconds", "Time spent rendering one chart image"),
		[]string{"chart"},
	)
	m.renderErrors = auto.NewCounterVec(
		m.counterOpts("render_errors_total", "Chart renders that fell back to an empty image"),
		[]string{"chart"},
	)
	m.forecastDegenerate = auto.NewCounter(m.counterOpts("forecast_degenerate_total", "Forecasts skipped for lack of distinct years"))
	m.filterSelections = auto.NewCounterVec(
		m.counterOpts("filter_selections_total", "Dashboard requests by selected sport"),
		[]string{"sport"},
	)
	m.exportsTotal = auto.NewCounter(m.counterOpts("exports_total", "Spreadsheet exports served"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.rateLimited = auto.NewCounterVec(
		m.counterOpts("rate_limited_total", "Requests rejected by the per-client rate limiter"),
		[]string{"endpoint"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause"))
}

// Dataset Metrics Functions.

// UpdateDatasetRows sets the row count of a load stage.
func UpdateDatasetRows(stage string, rows int) {
	globalManager.datasetRows.WithLabelValues(stage).Set(float64(rows))
}

// UpdateDatasetLoadDuration records how long the dataset load took.
func UpdateDatasetLoadDuration(ms float64) {
	globalManager.datasetLoadDuration.Set(ms)
}

// UpdateDatasetSports sets the number of distinct sports.
func UpdateDatasetSports(count int) {
	globalManager.datasetSports.Set(float64(count))
}

// Aggregation Metrics Functions.

// RecordAggregationDuration records one aggregate computation.
func RecordAggregationDuration(chart string, ms float64) {
	globalManager.aggregationDuration.WithLabelValues(chart).Observe(ms)
}

// RecordRenderDuration records one chart render.
func RecordRenderDuration(chart string, ms float64) {
	globalManager.renderDuration.WithLabelValues(chart).Observe(ms)
}

// RecordRenderError counts a render that fell back to the placeholder image.
func RecordRenderError(chart string) {
	globalManager.renderErrors.WithLabelValues(chart).Inc()
}

// RecordForecastDegenerate counts a forecast skipped for lack of data.
func RecordForecastDegenerate() {
	globalManager.forecastDegenerate.Inc()
}

// RecordFilterSelection counts a dashboard request for sport ("all" when unfiltered).
func RecordFilterSelection(sport string) {
	globalManager.filterSelections.WithLabelValues(sport).Inc()
}

// RecordExport counts a served spreadsheet export.
func RecordExport() {
	globalManager.exportsTotal.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
