package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/fpbouchard/parallel-tests/internal/metrics"
	"github.com/fpbouchard/parallel-tests/mip"
	"github.com/fpbouchard/parallel-tests/types"
)

const (
	// DefaultRelativeGap is the relative optimality gap handed to the solver.
	DefaultRelativeGap = 0.002

	// DefaultAssignThreshold is the value above which an assignment variable reads as 1.
	DefaultAssignThreshold = 0.99

	makespanVar = "y_max_time"
)

// Exact implements min-max balancing as a mixed-integer program.
//
// The model has one binary variable x[i][j] per (item, group) pair and one
// continuous makespan variable y:
//
//	minimize   y
//	subject to sum_j x[i][j] = 1                       for every item i
//	           sum_i cost[i] * x[i][j] - y <= -base[j] for every group j
//	           y >= 0, x binary
//
// base[j] is the weight group j already carries (pinned items), so y is the
// makespan of the final groups. For empty groups the right-hand side is 0.
type Exact struct {
	solver          mip.Solver
	relativeGap     float64
	assignThreshold float64
	timeLimit       time.Duration
	logger          types.Logger
	metrics         types.MetricsCollector
}

var _ types.Balancer = (*Exact)(nil)

// ExactOption configures an Exact balancer.
type ExactOption func(*Exact)

// WithRelativeGap sets the relative optimality gap passed to the solver.
//
// Non-positive values are ignored.
func WithRelativeGap(gap float64) ExactOption {
	return func(e *Exact) {
		if gap > 0 {
			e.relativeGap = gap
		}
	}
}

// WithAssignThreshold sets the read-back threshold for assignment variables.
//
// Values outside (0.5, 1] are ignored: at or below one half, an item could read
// as assigned to two groups.
func WithAssignThreshold(threshold float64) ExactOption {
	return func(e *Exact) {
		if threshold > 0.5 && threshold <= 1 {
			e.assignThreshold = threshold
		}
	}
}

// WithTimeLimit bounds the backend run time. Zero means no limit.
func WithTimeLimit(limit time.Duration) ExactOption {
	return func(e *Exact) {
		if limit >= 0 {
			e.timeLimit = limit
		}
	}
}

// WithExactLogger sets the logger for the exact balancer.
func WithExactLogger(logger types.Logger) ExactOption {
	return func(e *Exact) {
		e.logger = logger
	}
}

// WithExactMetrics sets the metrics collector for solver runs.
func WithExactMetrics(collector types.MetricsCollector) ExactOption {
	return func(e *Exact) {
		e.metrics = collector
	}
}

// NewExact creates a new exact balancer backed by solver.
//
// Parameters:
//   - solver: Solver backend; must not be nil
//   - opts: Optional configuration (WithRelativeGap, WithAssignThreshold, WithTimeLimit,
//     WithExactLogger, WithExactMetrics)
//
// Returns:
//   - *Exact: Initialized exact balancer
//
// Example:
//
//	balancer := strategy.NewExact(cbc.New(), strategy.WithRelativeGap(0.01))
//	err := balancer.Assign(ctx, items, groups)
func NewExact(solver mip.Solver, opts ...ExactOption) *Exact {
	e := &Exact{
		solver:          solver,
		relativeGap:     DefaultRelativeGap,
		assignThreshold: DefaultAssignThreshold,
		logger:          logging.NewNop(),
		metrics:         metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the solver backend name.
func (e *Exact) Name() string {
	if e.solver == nil {
		return ""
	}

	return e.solver.Name()
}

// Assign solves the balancing model and applies the solver's assignment.
//
// Groups are only mutated after the whole solution has been read back, so a
// failed call leaves them untouched.
//
// Parameters:
//   - ctx: Context for cancellation; canceling kills the solver process
//   - items: Items to place
//   - groups: Target groups, mutated in place
//
// Returns:
//   - error: ErrSolverRequired, ErrNoSolution, ErrInconsistentSolution, or a wrapped
//     backend error; all are fatal to the grouping call
func (e *Exact) Assign(ctx context.Context, items []types.Item, groups []*types.Group) error {
	if e.solver == nil {
		return types.ErrSolverRequired
	}
	if len(items) == 0 {
		return nil
	}
	if len(groups) == 0 {
		return ErrNoGroups
	}

	model := e.BuildModel(items, groups)

	start := time.Now()
	sol, err := e.solver.Solve(ctx, model)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.RecordSolve(e.solver.Name(), elapsed.Seconds(), "error")
		return fmt.Errorf("%w: %s: %w", types.ErrPartitionFailed, e.solver.Name(), err)
	}

	status := mip.StatusUnknown
	if sol != nil {
		status = sol.Status
	}
	e.metrics.RecordSolve(e.solver.Name(), elapsed.Seconds(), status.String())
	e.logger.Debug("solver finished",
		"solver", e.solver.Name(),
		"status", status.String(),
		"duration", elapsed,
		"variables", len(model.Vars),
		"constraints", len(model.Constraints),
	)

	if !sol.HasSolution() {
		return fmt.Errorf("%w: %s reported %s", types.ErrNoSolution, e.solver.Name(), status)
	}

	assignment, err := e.readAssignment(sol, items, len(groups))
	if err != nil {
		return err
	}

	for i, item := range items {
		groups[assignment[i]].AddItem(item)
	}

	return nil
}

// BuildModel builds the min-max assignment model for items over groups.
//
// Variable x[i][j] has index i*len(groups)+j; the makespan variable comes last.
// Groups are only read.
//
// Parameters:
//   - items: Items to place (unknown weights cost 1)
//   - groups: Target groups; their current weight is the baseline of each row
//
// Returns:
//   - *mip.Model: Model ready to be handed to a solver
func (e *Exact) BuildModel(items []types.Item, groups []*types.Group) *mip.Model {
	model := mip.NewModel("balanced_groups")
	numGroups := len(groups)

	for i := range items {
		for j := range numGroups {
			model.AddVar(assignVarName(i, j), 0, 0, 1, mip.Binary)
		}
	}
	y := model.AddVar(makespanVar, 1, 0, math.Inf(1), mip.Continuous)

	for i := range items {
		model.AddConstraint(fmt.Sprintf("assign_test%d_to_one_bucket", i), mip.Equal, 1)
		for j := range numGroups {
			model.AddTerm(i*numGroups+j, 1)
		}
	}

	for j := range numGroups {
		rhs := 0.0
		if groups[j].Weight > 0 {
			rhs = -groups[j].Weight
		}
		model.AddConstraint(fmt.Sprintf("total_time_of_bucket%d_less_than_max_time", j), mip.LessEqual, rhs)
		for i, item := range items {
			model.AddTerm(i*numGroups+j, item.Cost())
		}
		model.AddTerm(y, -1)
	}

	model.SetParams(mip.Params{
		MIP:         true,
		RelativeGap: e.relativeGap,
		TimeLimit:   e.timeLimit,
	})

	return model
}

// readAssignment maps every item to the single group whose variable exceeds the threshold.
func (e *Exact) readAssignment(sol *mip.Solution, items []types.Item, numGroups int) ([]int, error) {
	if want := len(items)*numGroups + 1; len(sol.Values) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d",
			types.ErrInconsistentSolution, want, len(sol.Values))
	}

	assignment := make([]int, len(items))
	for i, item := range items {
		assignment[i] = -1
		for j := range numGroups {
			if sol.Values[i*numGroups+j] <= e.assignThreshold {
				continue
			}
			if assignment[i] >= 0 {
				return nil, fmt.Errorf("%w: item %q assigned to groups %d and %d",
					types.ErrInconsistentSolution, item.ID, assignment[i], j)
			}
			assignment[i] = j
		}
		if assignment[i] < 0 {
			return nil, fmt.Errorf("%w: item %q not assigned to any group",
				types.ErrInconsistentSolution, item.ID)
		}
	}

	return assignment, nil
}

func assignVarName(item, group int) string {
	return fmt.Sprintf("x_assign_test%d_to_bucket%d", item, group)
}
