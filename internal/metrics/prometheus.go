package metrics

import (
	"strconv"
	"sync"

	"github.com/fpbouchard/parallel-tests/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// collector that is never used leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	partitionRuns     *prometheus.CounterVec
	partitionFailures *prometheus.CounterVec
	makespan          prometheus.Gauge
	items             prometheus.Gauge
	groupWeight       *prometheus.GaugeVec
	solveDuration     *prometheus.HistogramVec
	fallbacks         prometheus.Counter
	publishResults    *prometheus.CounterVec
	publishLatency    prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "grouper" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "grouper"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.partitionRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "runs_total",
			Help:      "Total completed grouping calls by balancing strategy.",
		}, []string{"strategy"})

		p.partitionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "failures_total",
			Help:      "Total failed grouping calls by reason (config,solver,source).",
		}, []string{"reason"})

		p.makespan = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "makespan",
			Help:      "Maximum group weight of the latest partition.",
		})

		p.items = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "items",
			Help:      "Number of items in the latest partition.",
		})

		p.groupWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "group_weight",
			Help:      "Total weight per group of the latest partition.",
		}, []string{"group"})

		p.solveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "External solver run time in seconds by backend and status.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms .. ~80s
		}, []string{"solver", "status"})

		p.fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "solver",
			Name:      "best_effort_fallbacks_total",
			Help:      "Grouping calls that used the greedy balancer because no solver was available.",
		})

		p.publishResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "plan",
			Name:      "publish_results_total",
			Help:      "Plan publish outcomes (success,failure).",
		}, []string{"result"})

		p.publishLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "plan",
			Name:      "publish_latency_seconds",
			Help:      "Latency of plan publish operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		})

		p.reg.MustRegister(p.partitionRuns)
		p.reg.MustRegister(p.partitionFailures)
		p.reg.MustRegister(p.makespan)
		p.reg.MustRegister(p.items)
		p.reg.MustRegister(p.groupWeight)
		p.reg.MustRegister(p.solveDuration)
		p.reg.MustRegister(p.fallbacks)
		p.reg.MustRegister(p.publishResults)
		p.reg.MustRegister(p.publishLatency)
	})
}

// PartitionMetrics implementation

// RecordPartition counts a completed call and sets the latest makespan and item count.
func (p *PrometheusCollector) RecordPartition(strategy string, _ /* groups */ int, items int, makespan float64) {
	p.ensureRegistered()
	p.partitionRuns.WithLabelValues(strategy).Inc()
	p.makespan.Set(makespan)
	p.items.Set(float64(items))
}

// RecordGroupWeight sets the weight gauge of one group.
func (p *PrometheusCollector) RecordGroupWeight(group int, weight float64) {
	p.ensureRegistered()
	p.groupWeight.WithLabelValues(strconv.Itoa(group)).Set(weight)
}

// RecordPartitionFailure counts a failed call.
func (p *PrometheusCollector) RecordPartitionFailure(reason string) {
	p.ensureRegistered()
	p.partitionFailures.WithLabelValues(reason).Inc()
}

// SolverMetrics implementation

// RecordSolve observes a solver run time.
func (p *PrometheusCollector) RecordSolve(solver string, duration float64, status string) {
	p.ensureRegistered()
	p.solveDuration.WithLabelValues(solver, status).Observe(duration)
}

// RecordBestEffortFallback counts a greedy fallback.
func (p *PrometheusCollector) RecordBestEffortFallback() {
	p.ensureRegistered()
	p.fallbacks.Inc()
}

// PlanMetrics implementation

// RecordPlanPublish counts a publish outcome and observes its latency.
func (p *PrometheusCollector) RecordPlanPublish(success bool, duration float64) {
	p.ensureRegistered()
	result := "success"
	if !success {
		result = "failure"
	}
	p.publishResults.WithLabelValues(result).Inc()
	p.publishLatency.Observe(duration)
}
