package mip

import "context"

// Status is the outcome reported by a solver backend.
type Status int

const (
	// StatusUnknown means the backend stopped without a conclusion.
	StatusUnknown Status = iota
	// StatusOptimal means the incumbent is optimal within the requested gap.
	StatusOptimal
	// StatusFeasible means an incumbent exists but the search stopped early
	// (time or node limit).
	StatusFeasible
	// StatusInfeasible means the model has no feasible solution.
	StatusInfeasible
	// StatusUnbounded means the objective is unbounded.
	StatusUnbounded
)

// String returns the lowercase status name used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// Solution is a solver result.
type Solution struct {
	// Status is the backend's conclusion.
	Status Status

	// Objective is the objective value of the incumbent (meaningful only with a solution).
	Objective float64

	// Values holds one value per model variable in AddVar order.
	Values []float64
}

// HasSolution reports whether the solution carries usable variable values.
func (s *Solution) HasSolution() bool {
	return s != nil && (s.Status == StatusOptimal || s.Status == StatusFeasible)
}

// Solver is an external MILP solver backend.
//
// Backends are probed once per grouping call with Available; the first available
// backend in the configured preference order is used. Solve must not mutate the
// model.
type Solver interface {
	// Name identifies the backend ("cbc", "glpsol").
	Name() string

	// Available reports whether the backend can run in this environment.
	Available() bool

	// Solve solves the model.
	//
	// Parameters:
	//   - ctx: Context for cancellation; backends kill the solver process on cancel
	//   - model: Model to solve
	//
	// Returns:
	//   - *Solution: Result, possibly without values (infeasible, unknown)
	//   - error: Backend failure (cannot start, unreadable output, canceled)
	Solve(ctx context.Context, model *Model) (*Solution, error)
}
