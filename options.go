package paralleltests

import (
	"time"

	"github.com/fpbouchard/parallel-tests/mip"
)

// Option configures a Grouper with optional dependencies.
type Option func(*grouperOptions)

// grouperOptions holds optional Grouper configuration.
type grouperOptions struct {
	solvers         []mip.Solver
	metrics         MetricsCollector
	logger          Logger
	relativeGap     float64
	assignThreshold float64
	solveTimeout    time.Duration
}

// WithSolvers sets the solver backends in preference order.
//
// The first backend whose Available check succeeds is used for a call. With no
// backends (the default), or none available, every call uses the greedy balancer.
//
// Parameters:
//   - solvers: Backends, e.g. from SolversFromConfig
//
// Returns:
//   - Option: Functional option for NewGrouper
//
// Example:
//
//	g := paralleltests.NewGrouper(paralleltests.WithSolvers(cbc.New(), glpk.New()))
func WithSolvers(solvers ...mip.Solver) Option {
	return func(o *grouperOptions) {
		o.solvers = append(o.solvers, solvers...)
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewGrouper
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "grouper")
//	g := paralleltests.NewGrouper(paralleltests.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *grouperOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Per-group totals and the balancing strategy of every call are logged at Info.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewGrouper
func WithLogger(logger Logger) Option {
	return func(o *grouperOptions) {
		o.logger = logger
	}
}

// WithRelativeGap sets the relative optimality gap handed to solver backends.
func WithRelativeGap(gap float64) Option {
	return func(o *grouperOptions) {
		o.relativeGap = gap
	}
}

// WithAssignThreshold sets the read-back threshold for solver assignment variables.
func WithAssignThreshold(threshold float64) Option {
	return func(o *grouperOptions) {
		o.assignThreshold = threshold
	}
}

// WithSolveTimeout bounds each grouping call. Expiry cancels the call with
// context.DeadlineExceeded; there is no greedy retry.
func WithSolveTimeout(timeout time.Duration) Option {
	return func(o *grouperOptions) {
		o.solveTimeout = timeout
	}
}
