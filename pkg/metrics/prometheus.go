// Package metrics provides Prometheus metrics for the attune fusion service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stream label values used across per-stream metrics.
const (
	StreamVisual = "visual"
	StreamAudio  = "audio"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion and buffer health.
	samplesIngested *prometheus.CounterVec
	bufferSize      *prometheus.GaugeVec
	bufferEvictions *prometheus.CounterVec

	// Synchronizer outcomes.
	syncMatches    prometheus.Counter
	staleDiscards  *prometheus.CounterVec
	matchGap       prometheus.Histogram
	consumerFaults prometheus.Counter

	// Scoring results.
	statesScored    *prometheus.CounterVec
	stateConfidence prometheus.Gauge

	// HTTP adapter.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Websocket telemetry stream.
	streamClients prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry avoids the default registry's Go runtime collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "attune",
		subsystem:        "fusion",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.register()
	return m
}

func (m *Manager) register() {
	auto := promauto.With(m.registry)

	m.samplesIngested = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_ingested_total",
		Help:      "Total number of feature samples pushed, by stream",
	}, []string{"stream"})

	m.bufferSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "buffer_size",
		Help:      "Current number of pending samples in each stream buffer",
	}, []string{"stream"})

	m.bufferEvictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "buffer_evictions_total",
		Help:      "Total number of oldest-sample evictions caused by buffer overflow",
	}, []string{"stream"})

	m.syncMatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_matches_total",
		Help:      "Total number of visual/audio pairs matched within tolerance",
	})

	m.staleDiscards = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_discards_total",
		Help:      "Total number of stale heads discarded during reconciliation, by stream",
	}, []string{"stream"})

	m.matchGap = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_gap_milliseconds",
		Help:      "Timestamp gap between the two sides of a matched pair",
		Buckets:   m.histogramBuckets,
	})

	m.consumerFaults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "consumer_faults_total",
		Help:      "Total number of panics recovered from event/state consumers",
	})

	m.statesScored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "states_scored_total",
		Help:      "Total number of cognitive states derived, by engagement and arousal",
	}, []string{"engagement", "arousal"})

	m.stateConfidence = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "state_confidence",
		Help:      "Confidence of the most recently derived cognitive state",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.streamClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_clients",
		Help:      "Number of connected websocket telemetry clients",
	})
}

// RecordSampleIngested increments the per-stream ingestion counter.
func RecordSampleIngested(stream string) {
	globalManager.samplesIngested.WithLabelValues(stream).Inc()
}

// UpdateBufferSize sets the pending-sample gauge for a stream.
func UpdateBufferSize(stream string, size int) {
	globalManager.bufferSize.WithLabelValues(stream).Set(float64(size))
}

// RecordBufferEviction increments the overflow-eviction counter for a stream.
func RecordBufferEviction(stream string) {
	globalManager.bufferEvictions.WithLabelValues(stream).Inc()
}

// RecordSyncMatch increments the matched-pair counter.
func RecordSyncMatch() {
	globalManager.syncMatches.Inc()
}

// RecordStaleDiscard increments the stale-head counter for a stream.
func RecordStaleDiscard(stream string) {
	globalManager.staleDiscards.WithLabelValues(stream).Inc()
}

// RecordMatchGap observes the timestamp gap of a matched pair in milliseconds.
func RecordMatchGap(gapMS float64) {
	globalManager.matchGap.Observe(gapMS)
}

// RecordConsumerFault increments the recovered-consumer-panic counter.
func RecordConsumerFault() {
	globalManager.consumerFaults.Inc()
}

// RecordStateScored increments the scored-state counter for a level pair.
func RecordStateScored(engagement, arousal string) {
	globalManager.statesScored.WithLabelValues(engagement, arousal).Inc()
}

// UpdateStateConfidence sets the latest-state confidence gauge.
func UpdateStateConfidence(confidence float64) {
	globalManager.stateConfidence.Set(confidence)
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMS float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMS)
}

// UpdateStreamClients sets the connected websocket client gauge.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// GetRegistry returns the registry all service metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
