// Package metrics provides Prometheus metrics for the bassboard dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Outcome labels for upstream requests.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeMalformed = "malformed"
	OutcomeAPI       = "api_error"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Upstream API
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamFallback prometheus.Counter

	// Normalization
	rowsNormalized   prometheus.Counter
	eventsNormalized prometheus.Counter
	fieldUnparseable *prometheus.CounterVec

	// View state
	selections        *prometheus.CounterVec
	staleDiscarded    *prometheus.CounterVec
	boardRows         *prometheus.GaugeVec
	eventsListed      prometheus.Gauge
	selectionRejected prometheus.Counter

	// Load queue and fetch workers
	loadQueueSize      prometheus.Gauge
	loadQueueCapacity  prometheus.Gauge
	loadQueueRejected  *prometheus.CounterVec
	loadJobLatency     prometheus.Histogram
	loadWorkersActive  prometheus.Gauge
	loadJobsSuperseded prometheus.Counter

	// HTTP sink
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	liveClients         prometheus.Gauge
	liveBroadcasts      prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bassboard",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Requests issued to the leaderboard API by action and outcome"),
		[]string{"action", "outcome"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_request_duration_milliseconds", "Leaderboard API round-trip time in milliseconds"),
		[]string{"action"},
	)
	m.upstreamFallback = auto.NewCounter(
		m.counterOpts("upstream_whole_payload_fallback_total", "Envelopes without a data field that were returned whole"),
	)

	m.rowsNormalized = auto.NewCounter(
		m.counterOpts("rows_normalized_total", "Angler rows converted to canonical form"),
	)
	m.eventsNormalized = auto.NewCounter(
		m.counterOpts("events_normalized_total", "Events converted to canonical form"),
	)
	m.fieldUnparseable = auto.NewCounterVec(
		m.counterOpts("field_unparseable_total", "Present field values that failed strict parsing"),
		[]string{"field"},
	)

	m.selections = auto.NewCounterVec(
		m.counterOpts("selections_total", "Selection changes by kind (event, tab, row)"),
		[]string{"kind"},
	)
	m.staleDiscarded = auto.NewCounterVec(
		m.counterOpts("stale_responses_discarded_total", "Leaderboard responses dropped because the selection moved on"),
		[]string{"tab"},
	)
	m.boardRows = auto.NewGaugeVec(
		m.gaugeOpts("board_rows", "Rows loaded for the current event by tab"),
		[]string{"tab"},
	)
	m.eventsListed = auto.NewGauge(
		m.gaugeOpts("events_listed", "Events in the most recent events list"),
	)
	m.selectionRejected = auto.NewCounter(
		m.counterOpts("row_selection_ignored_total", "Row clicks ignored because the index was out of range"),
	)

	m.loadQueueSize = auto.NewGauge(
		m.gaugeOpts("load_queue_size", "Leaderboard load jobs waiting for a worker"),
	)
	m.loadQueueCapacity = auto.NewGauge(
		m.gaugeOpts("load_queue_capacity", "Maximum leaderboard load jobs the queue accepts"),
	)
	m.loadQueueRejected = auto.NewCounterVec(
		m.counterOpts("load_queue_rejected_total", "Load jobs refused by the queue by reason"),
		[]string{"reason"},
	)
	m.loadJobLatency = auto.NewHistogram(
		m.histogramOpts("load_job_duration_milliseconds", "Time from dequeue to apply for one load job"),
	)
	m.loadWorkersActive = auto.NewGauge(
		m.gaugeOpts("load_workers_active", "Fetch workers running"),
	)
	m.loadJobsSuperseded = auto.NewCounter(
		m.counterOpts("load_jobs_superseded_total", "Load jobs skipped because the selection moved on before they ran"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.liveClients = auto.NewGauge(
		m.gaugeOpts("live_clients", "Connected websocket render sinks"),
	)
	m.liveBroadcasts = auto.NewCounter(
		m.counterOpts("live_broadcasts_total", "View snapshots pushed to websocket sinks"),
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordUpstreamRequest counts an upstream call and observes its latency.
func RecordUpstreamRequest(action, outcome string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.upstreamRequests.WithLabelValues(action, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(action).Observe(latencyMs)
}

// RecordWholePayloadFallback counts envelopes returned whole for lack of data.
func RecordWholePayloadFallback() {
	globalManager.upstreamFallback.Inc()
}

// RecordRowNormalized increments the normalized rows counter.
func RecordRowNormalized() {
	globalManager.rowsNormalized.Inc()
}

// RecordEventNormalized increments the normalized events counter.
func RecordEventNormalized() {
	globalManager.eventsNormalized.Inc()
}

// RecordFieldUnparseable counts a present-but-unparseable field value.
func RecordFieldUnparseable(field string) {
	globalManager.fieldUnparseable.WithLabelValues(field).Inc()
}

// RecordSelection counts a selection change of the given kind.
func RecordSelection(kind string) {
	globalManager.selections.WithLabelValues(kind).Inc()
}

// RecordStaleDiscarded counts a dropped stale response for tab.
func RecordStaleDiscarded(tab string) {
	globalManager.staleDiscarded.WithLabelValues(tab).Inc()
}

// RecordRowSelectionIgnored counts an out-of-range row click.
func RecordRowSelectionIgnored() {
	globalManager.selectionRejected.Inc()
}

// UpdateBoardRows sets the row count for a tab of the current event.
func UpdateBoardRows(tab string, rows int) {
	globalManager.boardRows.WithLabelValues(tab).Set(float64(rows))
}

// ResetBoardRows clears every per-tab row gauge, used when the event changes.
func ResetBoardRows() {
	globalManager.boardRows.Reset()
}

// UpdateEventsListed sets the size of the events list.
func UpdateEventsListed(count int) {
	globalManager.eventsListed.Set(float64(count))
}

// UpdateLoadQueueSize sets the number of queued load jobs.
func UpdateLoadQueueSize(size int) {
	if globalManager.enabled {
		globalManager.loadQueueSize.Set(float64(size))
	}
}

// UpdateLoadQueueCapacity sets the load queue capacity.
func UpdateLoadQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.loadQueueCapacity.Set(float64(capacity))
	}
}

// RecordLoadQueueRejected counts a refused load job.
func RecordLoadQueueRejected(reason string) {
	if globalManager.enabled {
		globalManager.loadQueueRejected.WithLabelValues(reason).Inc()
	}
}

// RecordLoadJobLatency observes one load job's processing time.
func RecordLoadJobLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.loadJobLatency.Observe(latencyMs)
	}
}

// UpdateLoadWorkersActive sets the running fetch worker count.
func UpdateLoadWorkersActive(count int) {
	if globalManager.enabled {
		globalManager.loadWorkersActive.Set(float64(count))
	}
}

// RecordLoadJobSuperseded counts a job dropped before its request was sent.
func RecordLoadJobSuperseded() {
	if globalManager.enabled {
		globalManager.loadJobsSuperseded.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateLiveClients sets the number of connected websocket sinks.
func UpdateLiveClients(count int) {
	globalManager.liveClients.Set(float64(count))
}

// RecordLiveBroadcast counts a snapshot pushed to websocket sinks.
func RecordLiveBroadcast() {
	globalManager.liveBroadcasts.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
