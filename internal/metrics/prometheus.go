package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/heatgrid/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use so that
// constructing a PrometheusCollector never panics on duplicate registration
// unless it is actually used.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions *prometheus.CounterVec
	stateDuration    *prometheus.HistogramVec
	iterations       prometheus.Counter
	iterationLatency prometheus.Histogram
	runResults       *prometheus.CounterVec
	haloExchanges    *prometheus.CounterVec
	haloLatency      *prometheus.HistogramVec
	snapshots        prometheus.Counter
	snapshotBytes    prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "heatgrid" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "heatgrid"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulator",
			Name:      "state_transitions_total",
			Help:      "Total coordinator state transitions by source and target state.",
		}, []string{"from", "to"})

		p.stateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "simulator",
			Name:      "state_duration_seconds",
			Help:      "Time spent in each coordinator state before leaving it.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs .. ~2.6s
		}, []string{"state"})

		p.iterations = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulator",
			Name:      "iterations_total",
			Help:      "Total completed solver iterations.",
		})

		p.iterationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "simulator",
			Name:      "iteration_duration_seconds",
			Help:      "Wall-clock duration of a full distribute-exchange-update-collect-record iteration.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs .. ~0.8s
		})

		p.runResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "simulator",
			Name:      "runs_total",
			Help:      "Total runs by result (done, failed).",
		}, []string{"result"})

		p.haloExchanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "halo",
			Name:      "exchanges_total",
			Help:      "Total halo exchanges by worker and result (success, failure).",
		}, []string{"worker", "result"})

		p.haloLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "halo",
			Name:      "exchange_duration_seconds",
			Help:      "Latency of one worker's halo exchange in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"worker"})

		p.snapshots = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "snapshot",
			Name:      "frames_total",
			Help:      "Total recorded snapshot frames.",
		})

		p.snapshotBytes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "snapshot",
			Name:      "bytes_total",
			Help:      "Total bytes of quantized snapshot data recorded.",
		})

		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.stateDuration)
		p.reg.MustRegister(p.iterations)
		p.reg.MustRegister(p.iterationLatency)
		p.reg.MustRegister(p.runResults)
		p.reg.MustRegister(p.haloExchanges)
		p.reg.MustRegister(p.haloLatency)
		p.reg.MustRegister(p.snapshots)
		p.reg.MustRegister(p.snapshotBytes)
	})
}

// RecordStateTransition counts the transition and observes time spent in from.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State, duration float64) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.stateDuration.WithLabelValues(from.String()).Observe(duration)
}

// RecordIteration counts a completed iteration and observes its duration.
func (p *PrometheusCollector) RecordIteration(duration float64) {
	p.ensureRegistered()
	p.iterations.Inc()
	p.iterationLatency.Observe(duration)
}

// RecordRunResult counts a finished run.
func (p *PrometheusCollector) RecordRunResult(result string) {
	p.ensureRegistered()
	p.runResults.WithLabelValues(result).Inc()
}

// RecordHaloExchange counts an exchange outcome and observes its latency.
func (p *PrometheusCollector) RecordHaloExchange(worker int, duration float64, success bool) {
	p.ensureRegistered()
	w := strconv.Itoa(worker)
	result := "success"
	if !success {
		result = "failure"
	}
	p.haloExchanges.WithLabelValues(w, result).Inc()
	p.haloLatency.WithLabelValues(w).Observe(duration)
}

// RecordSnapshot counts a recorded frame and its size.
func (p *PrometheusCollector) RecordSnapshot(size int) {
	p.ensureRegistered()
	p.snapshots.Inc()
	p.snapshotBytes.Add(float64(size))
}
