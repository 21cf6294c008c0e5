package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/popbal/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are created and registered lazily on first use, so constructing a
// collector that is never used leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	attempts      *prometheus.CounterVec
	iterations    prometheus.Histogram
	relativeError prometheus.Histogram
	taskDuration  *prometheus.HistogramVec
	neighborhoods prometheus.Gauge
	activeWorkers prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "popbal" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "popbal"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.attempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balance",
			Name:      "attempts_total",
			Help:      "Total balancing attempts by whether they converged.",
		}, []string{"converged"})

		p.iterations = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "balance",
			Name:      "iterations",
			Help:      "Weight-update sweeps used per balancing attempt.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 .. 2048
		})

		p.relativeError = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "balance",
			Name:      "relative_error",
			Help:      "Weighted total relative error per balancing attempt.",
			Buckets:   []float64{1e-6, 1e-5, 1e-4, 1e-3, 0.01, 0.05, 0.1, 0.5, 1},
		})

		p.taskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "neighborhood",
			Name:      "duration_seconds",
			Help:      "Wall time of neighborhood tasks by outcome (converged,best_effort,failed).",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms .. ~4m
		}, []string{"outcome"})

		p.neighborhoods = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "run",
			Name:      "neighborhoods",
			Help:      "Number of independent neighborhoods in the current run.",
		})

		p.activeWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "run",
			Name:      "active_workers",
			Help:      "Number of neighborhood tasks currently running.",
		})

		p.reg.MustRegister(p.attempts)
		p.reg.MustRegister(p.iterations)
		p.reg.MustRegister(p.relativeError)
		p.reg.MustRegister(p.taskDuration)
		p.reg.MustRegister(p.neighborhoods)
		p.reg.MustRegister(p.activeWorkers)
	})
}

// RecordBalanceAttempt increments the attempt counter.
func (p *PrometheusCollector) RecordBalanceAttempt(converged bool) {
	p.ensureRegistered()
	p.attempts.WithLabelValues(strconv.FormatBool(converged)).Inc()
}

// RecordIterations observes the sweeps used by an attempt.
func (p *PrometheusCollector) RecordIterations(iterations int) {
	p.ensureRegistered()
	p.iterations.Observe(float64(iterations))
}

// RecordRelativeError observes an attempt score.
func (p *PrometheusCollector) RecordRelativeError(score float64) {
	p.ensureRegistered()
	p.relativeError.Observe(score)
}

// RecordNeighborhoodDuration observes a task duration (seconds) for the given outcome.
func (p *PrometheusCollector) RecordNeighborhoodDuration(duration float64, outcome string) {
	p.ensureRegistered()
	p.taskDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordNeighborhoodCount sets the neighborhood gauge.
func (p *PrometheusCollector) RecordNeighborhoodCount(count int) {
	p.ensureRegistered()
	p.neighborhoods.Set(float64(count))
}

// RecordActiveWorkers sets the busy worker gauge.
func (p *PrometheusCollector) RecordActiveWorkers(count int) {
	p.ensureRegistered()
	p.activeWorkers.Set(float64(count))
}
