package metrics

import (
	"strconv"
	"sync"

	"github.com/arloliu/pushsub/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing
// a collector that is never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Handler metrics
	transitions    *prometheus.CounterVec
	stateDuration  *prometheus.HistogramVec
	currentState   *prometheus.GaugeVec
	listenerPanics prometheus.Counter

	// Publisher metrics
	publishResults *prometheus.CounterVec
	publishLatency *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "pushsub" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "pushsub"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "handler",
			Name:      "state_transitions_total",
			Help:      "Total accepted state transitions by source and target state.",
		}, []string{"from", "to"})

		p.stateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "handler",
			Name:      "state_duration_seconds",
			Help:      "Time spent in a state before leaving it, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10), // 5ms .. ~22min
		}, []string{"state"})

		p.currentState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "handler",
			Name:      "state",
			Help:      "Current handler state (1 for the active state, 0 otherwise).",
		}, []string{"state"})

		p.listenerPanics = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "handler",
			Name:      "listener_panics_total",
			Help:      "Total status listener invocations that panicked.",
		})

		p.publishResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "operations_total",
			Help:      "Total record publish/unpublish attempts by operation and success.",
		}, []string{"operation", "success"})

		p.publishLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "operation_duration_seconds",
			Help:      "Latency of record publish/unpublish attempts in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 1.6, 12), // 10ms .. ~1.8s
		}, []string{"operation"})

		p.reg.MustRegister(p.transitions)
		p.reg.MustRegister(p.stateDuration)
		p.reg.MustRegister(p.currentState)
		p.reg.MustRegister(p.listenerPanics)
		p.reg.MustRegister(p.publishResults)
		p.reg.MustRegister(p.publishLatency)
	})
}

// HandlerMetrics implementation

// RecordStateTransition counts the transition, observes the time spent in the
// previous state and moves the current state gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State, duration float64) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
	if duration >= 0 {
		p.stateDuration.WithLabelValues(from.String()).Observe(duration)
	}
	p.currentState.WithLabelValues(from.String()).Set(0)
	p.currentState.WithLabelValues(to.String()).Set(1)
}

// RecordListenerPanic increments the listener panic counter.
func (p *PrometheusCollector) RecordListenerPanic() {
	p.ensureRegistered()
	p.listenerPanics.Inc()
}

// PublisherMetrics implementation

// RecordPublish counts a publish or unpublish attempt and observes its latency.
func (p *PrometheusCollector) RecordPublish(operation string, success bool, duration float64) {
	p.ensureRegistered()
	p.publishResults.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	if duration >= 0 {
		p.publishLatency.WithLabelValues(operation).Observe(duration)
	}
}
