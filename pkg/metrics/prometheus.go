// Package metrics provides Prometheus metrics for the deployment-checklist engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Client lookup metrics
	lookupExactHits    prometheus.Counter
	lookupApproxHits   prometheus.Counter
	lookupMisses       prometheus.Counter
	lookupCacheHits    prometheus.Counter
	indexedClients     prometheus.Gauge
	malformedRows      prometheus.Counter

	// Assignment metrics
	assignments       *prometheus.CounterVec
	trainersIndexed   prometheus.Gauge

	// Toggle metrics
	toggleCycles       *prometheus.CounterVec
	totalsNotification prometheus.Counter
	toggleCount        prometheus.Gauge

	// Dataset load metrics
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "deploycheck",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.lookupExactHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_lookup_exact_total",
		Help:      "Total number of client lookups resolved by exact key match",
	})

	m.lookupApproxHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_lookup_approximate_total",
		Help:      "Total number of client lookups resolved by approximate substring match",
	})

	m.lookupMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_lookup_miss_total",
		Help:      "Total number of client lookups that found no record",
	})

	m.lookupCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_lookup_cache_hits_total",
		Help:      "Total number of client lookups served from the query cache",
	})

	m.indexedClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "indexed_clients",
		Help:      "Number of client records currently indexed",
	})

	m.malformedRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "malformed_rows_total",
		Help:      "Total number of dataset rows dropped during parsing",
	})

	m.assignments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "assignments_total",
			Help:      "Total number of trainer assignment resolutions by outcome",
		},
		[]string{"outcome"},
	)

	m.trainersIndexed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trainers_indexed",
		Help:      "Number of deduplicated trainers known to the directory",
	})

	m.toggleCycles = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "toggle_cycles_total",
			Help:      "Total number of toggle state transitions by kind",
		},
		[]string{"kind"},
	)

	m.totalsNotification = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "totals_notifications_total",
		Help:      "Total number of notifications sent to the totals collaborator",
	})

	m.toggleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registered_toggles",
		Help:      "Number of registered feature toggles",
	})

	m.datasetLoads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "dataset_loads_total",
			Help:      "Total number of dataset load attempts by dataset and result",
		},
		[]string{"dataset", "result"},
	)

	m.datasetLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_load_duration_milliseconds",
		Help:      "Dataset load duration in milliseconds",
		Buckets:   m.histogramBuckets,
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
}

// Package-level helpers operating on the global manager.

// RecordLookupExact increments the exact-hit lookup counter.
func RecordLookupExact() {
	globalManager.lookupExactHits.Inc()
}

// RecordLookupApproximate increments the approximate-hit lookup counter.
func RecordLookupApproximate() {
	globalManager.lookupApproxHits.Inc()
}

// RecordLookupMiss increments the lookup miss counter.
func RecordLookupMiss() {
	globalManager.lookupMisses.Inc()
}

// RecordLookupCacheHit increments the query-cache hit counter.
func RecordLookupCacheHit() {
	globalManager.lookupCacheHits.Inc()
}

// UpdateIndexedClients sets the indexed client gauge.
func UpdateIndexedClients(count int) {
	globalManager.indexedClients.Set(float64(count))
}

// RecordMalformedRow increments the dropped-row counter.
func RecordMalformedRow() {
	globalManager.malformedRows.Inc()
}

// RecordAssignment increments the assignment counter for an outcome
// ("resolved", "no_specialty", "no_trainers").
func RecordAssignment(outcome string) {
	globalManager.assignments.WithLabelValues(outcome).Inc()
}

// UpdateTrainersIndexed sets the deduplicated trainer gauge.
func UpdateTrainersIndexed(count int) {
	globalManager.trainersIndexed.Set(float64(count))
}

// RecordToggleCycle increments the toggle transition counter for a kind
// ("primary", "secondary").
func RecordToggleCycle(kind string) {
	globalManager.toggleCycles.WithLabelValues(kind).Inc()
}

// RecordTotalsNotification increments the totals notification counter.
func RecordTotalsNotification() {
	globalManager.totalsNotification.Inc()
}

// UpdateToggleCount sets the registered toggle gauge.
func UpdateToggleCount(count int) {
	globalManager.toggleCount.Set(float64(count))
}

// RecordDatasetLoad increments the dataset load counter.
func RecordDatasetLoad(dataset, result string) {
	globalManager.datasetLoads.WithLabelValues(dataset, result).Inc()
}

// RecordDatasetLoadDuration records a dataset load duration in milliseconds.
func RecordDatasetLoadDuration(ms float64) {
	globalManager.datasetLoadDuration.Observe(ms)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
