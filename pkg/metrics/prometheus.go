// Package metrics provides Prometheus metrics for the fieldforce service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	samplesAccepted   prometheus.Counter
	samplesDuplicate  prometheus.Counter
	samplesRejected   *prometheus.CounterVec
	ingestLatency     prometheus.Histogram
	invalidTimestamps prometheus.Counter
	trackedSamples    prometheus.Gauge

	// Fleet
	fleetMembers *prometheus.GaugeVec
	fleetInField prometheus.Gauge

	// Tasks
	taskTransitions *prometheus.CounterVec
	tasksCreated    prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fieldforce",
		subsystem:        "tracker",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.samplesAccepted = m.counter("location_samples_accepted_total", "Location samples accepted for ingestion")
	m.samplesDuplicate = m.counter("location_samples_duplicate_total", "Location samples dropped as duplicates")
	m.samplesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "location_samples_rejected_total",
		Help: "Location samples rejected by reason",
	}, []string{"reason"})
	m.ingestLatency = m.histogram("location_ingest_latency_milliseconds", "Time from enqueue to store write in milliseconds")
	m.invalidTimestamps = m.counter("invalid_timestamps_total", "Timestamps that failed to parse or were missing")
	m.trackedSamples = m.gauge("tracked_samples", "Location samples currently held in history")

	m.fleetMembers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "fleet_members",
		Help: "Members by activity in the most recent fleet summary",
	}, []string{"activity"})
	m.fleetInField = m.gauge("fleet_in_field_percent", "In-field percentage in the most recent fleet summary")

	m.taskTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "task_transitions_total",
		Help: "Task status transitions by target status",
	}, []string{"status"})
	m.tasksCreated = m.counter("tasks_created_total", "Tasks created")

	m.queueSize = m.gauge("queue_size", "Current size of the ingestion queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the ingestion queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Samples enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Samples dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Samples refused by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Configured ingestion workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-sample worker processing time in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Samples a worker failed to store")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordSampleAccepted increments the accepted samples counter.
func RecordSampleAccepted() {
	globalManager.samplesAccepted.Inc()
}

// RecordSampleDuplicate increments the duplicate samples counter.
func RecordSampleDuplicate() {
	globalManager.samplesDuplicate.Inc()
}

// RecordSampleRejected counts a rejected sample under reason.
func RecordSampleRejected(reason string) {
	globalManager.samplesRejected.WithLabelValues(reason).Inc()
}

// RecordIngestLatency records enqueue-to-store latency in milliseconds.
func RecordIngestLatency(latencyMs float64) {
	globalManager.ingestLatency.Observe(latencyMs)
}

// RecordInvalidTimestamp increments the invalid timestamp counter.
func RecordInvalidTimestamp() {
	globalManager.invalidTimestamps.Inc()
}

// UpdateTrackedSamples sets the number of samples held in history.
func UpdateTrackedSamples(count int) {
	globalManager.trackedSamples.Set(float64(count))
}

// UpdateFleet publishes the counts of the latest fleet summary.
func UpdateFleet(active, idle, offline int, inFieldPercent int) {
	globalManager.fleetMembers.WithLabelValues("active").Set(float64(active))
	globalManager.fleetMembers.WithLabelValues("idle").Set(float64(idle))
	globalManager.fleetMembers.WithLabelValues("offline").Set(float64(offline))
	globalManager.fleetInField.Set(float64(inFieldPercent))
}

// RecordTaskTransition counts a task moving to status.
func RecordTaskTransition(status string) {
	globalManager.taskTransitions.WithLabelValues(status).Inc()
}

// RecordTaskCreated increments the created tasks counter.
func RecordTaskCreated() {
	globalManager.tasksCreated.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemStats samples heap usage and goroutine count.
func UpdateSystemStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
