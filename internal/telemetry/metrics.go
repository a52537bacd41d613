package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// MetricsRegistry holds all Prometheus metrics for the confluence engine
type MetricsRegistry struct {
	// Scoring health counters
	SanitizedInputs prometheus.Counter
	NeutralDefaults prometheus.Counter
	FallbackWeights prometheus.Counter

	// Tracker sink counters
	QueueDrops  prometheus.Counter
	SinkErrors  prometheus.Counter
	SinkWrites  prometheus.Counter
	BreakerOpen prometheus.Counter

	// Evaluation metrics
	Evaluations      *prometheus.CounterVec
	EvalDuration     prometheus.Histogram
	ActiveComponents prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetricsRegistry creates a registry with all confluence engine metrics
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		SanitizedInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_sanitized_inputs_total",
			Help: "Component scores clamped or replaced before normalization",
		}),
		NeutralDefaults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_neutral_defaults_total",
			Help: "Evaluations that degraded to the neutral fallback result",
		}),
		FallbackWeights: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_fallback_weights_total",
			Help: "Weight tables constructed with the uniform fallback",
		}),
		QueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_quality_log_drops_total",
			Help: "Quality records dropped because the tracker queue was full",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_quality_sink_errors_total",
			Help: "Failed writes to the quality log sink",
		}),
		SinkWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_quality_sink_writes_total",
			Help: "Quality records durably appended to the log sink",
		}),
		BreakerOpen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "confluence_quality_sink_breaker_open_total",
			Help: "Records rejected while the sink circuit breaker was open",
		}),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "confluence_evaluations_total",
				Help: "Completed evaluations by filter outcome",
			},
			[]string{"outcome"},
		),
		EvalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "confluence_eval_duration_seconds",
			Help:    "Duration of a single confluence evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		ActiveComponents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "confluence_active_components",
			Help: "Component count seen in the most recent evaluation",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.SanitizedInputs,
		m.NeutralDefaults,
		m.FallbackWeights,
		m.QueueDrops,
		m.SinkErrors,
		m.SinkWrites,
		m.BreakerOpen,
		m.Evaluations,
		m.EvalDuration,
		m.ActiveComponents,
	)

	return m
}

// MetricsHandler returns an HTTP handler serving this registry
func (m *MetricsRegistry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HealthCounters is the operator-facing view of the diagnostic counters
type HealthCounters struct {
	SanitizedInputs float64 `json:"sanitized_inputs"`
	NeutralDefaults float64 `json:"neutral_defaults"`
	FallbackWeights float64 `json:"fallback_weights"`
	QueueDrops      float64 `json:"log_drops"`
	SinkErrors      float64 `json:"sink_errors"`
	SinkWrites      float64 `json:"sink_writes"`
	BreakerOpen     float64 `json:"breaker_open"`
}

// Snapshot reads the current counter values for the health endpoint
func (m *MetricsRegistry) Snapshot() HealthCounters {
	return HealthCounters{
		SanitizedInputs: counterValue(m.SanitizedInputs),
		NeutralDefaults: counterValue(m.NeutralDefaults),
		FallbackWeights: counterValue(m.FallbackWeights),
		QueueDrops:      counterValue(m.QueueDrops),
		SinkErrors:      counterValue(m.SinkErrors),
		SinkWrites:      counterValue(m.SinkWrites),
		BreakerOpen:     counterValue(m.BreakerOpen),
	}
}

func counterValue(c prometheus.Counter) float64 {
	metric := &io_prometheus_client.Metric{}
	if err := c.Write(metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

var globalMetrics *MetricsRegistry

// InitializeMetrics sets up the global metrics registry
func InitializeMetrics() {
	globalMetrics = NewMetricsRegistry()
	log.Debug().Msg("Confluence metrics registry initialized")
}

// GetMetrics returns the global metrics registry, initializing it if needed
func GetMetrics() *MetricsRegistry {
	if globalMetrics == nil {
		InitializeMetrics()
	}
	return globalMetrics
}

// RecordSanitizedInput counts a component score that required sanitization
func RecordSanitizedInput() {
	GetMetrics().SanitizedInputs.Inc()
}

// RecordNeutralDefault counts an evaluation that fell back to neutral
func RecordNeutralDefault() {
	GetMetrics().NeutralDefaults.Inc()
}

// RecordFallbackWeights counts a uniform-weight fallback activation
func RecordFallbackWeights() {
	GetMetrics().FallbackWeights.Inc()
}
