package testing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/fpbouchard/parallel-tests/mip"
)

// EnumeratingSolverName is the backend name reported by NewEnumeratingSolver.
const EnumeratingSolverName = "enumerate"

// maxEnumeration bounds the number of candidate assignments Enumerate visits.
const maxEnumeration = 2_000_000

// ErrUnsupportedModel is returned by Enumerate for models outside its shape.
var ErrUnsupportedModel = errors.New("model not supported by enumerating solver")

// SolveFunc is the solve behavior of a FakeSolver.
type SolveFunc func(ctx context.Context, model *mip.Model) (*mip.Solution, error)

// FakeSolver is a configurable mip.Solver for tests.
//
// It records how often Solve was called and the last model it received.
type FakeSolver struct {
	name      string
	available bool
	solve     SolveFunc
	calls     atomic.Int64
	lastModel atomic.Pointer[mip.Model]
}

var _ mip.Solver = (*FakeSolver)(nil)

// NewFakeSolver creates a fake backend.
//
// Parameters:
//   - name: Backend name
//   - available: Result of the availability probe
//   - solve: Solve behavior
//
// Returns:
//   - *FakeSolver: The fake backend
func NewFakeSolver(name string, available bool, solve SolveFunc) *FakeSolver {
	return &FakeSolver{name: name, available: available, solve: solve}
}

// NewUnavailableSolver creates a backend whose availability probe fails.
//
// Solve fails with mip.ErrBackendFailed if it is called anyway.
func NewUnavailableSolver(name string) *FakeSolver {
	return NewFakeSolver(name, false, func(context.Context, *mip.Model) (*mip.Solution, error) {
		return nil, fmt.Errorf("%w: %s is not installed", mip.ErrBackendFailed, name)
	})
}

// NewNoSolutionSolver creates an available backend that always reports status
// without variable values (e.g., mip.StatusInfeasible).
func NewNoSolutionSolver(name string, status mip.Status) *FakeSolver {
	return NewFakeSolver(name, true, func(context.Context, *mip.Model) (*mip.Solution, error) {
		return &mip.Solution{Status: status}, nil
	})
}

// NewFailingSolver creates an available backend whose Solve returns err.
func NewFailingSolver(name string, err error) *FakeSolver {
	return NewFakeSolver(name, true, func(context.Context, *mip.Model) (*mip.Solution, error) {
		return nil, err
	})
}

// NewValuesSolver creates an available backend that returns a fixed optimal solution.
func NewValuesSolver(name string, values []float64) *FakeSolver {
	return NewFakeSolver(name, true, func(context.Context, *mip.Model) (*mip.Solution, error) {
		return &mip.Solution{Status: mip.StatusOptimal, Values: values}, nil
	})
}

// NewEnumeratingSolver creates an available backend that solves small
// assignment models exactly by exhaustive search (see Enumerate).
func NewEnumeratingSolver() *FakeSolver {
	return NewFakeSolver(EnumeratingSolverName, true, Enumerate)
}

// Name returns the backend name.
func (s *FakeSolver) Name() string {
	return s.name
}

// Available returns the configured availability.
func (s *FakeSolver) Available() bool {
	return s.available
}

// Solve records the call and runs the configured behavior.
func (s *FakeSolver) Solve(ctx context.Context, model *mip.Model) (*mip.Solution, error) {
	s.calls.Add(1)
	s.lastModel.Store(model)

	return s.solve(ctx, model)
}

// Calls returns how many times Solve was called.
func (s *FakeSolver) Calls() int {
	return int(s.calls.Load())
}

// LastModel returns the model passed to the most recent Solve call, or nil.
func (s *FakeSolver) LastModel() *mip.Model {
	return s.lastModel.Load()
}

// Enumerate solves a minimization model of the assignment shape exactly.
//
// Supported models:
//   - every binary variable appears in exactly one "choice" row: an equality with
//     right-hand side 1 whose terms are binary variables with coefficient 1
//   - every other row is a <= row with at most one continuous term, whose
//     coefficient is negative
//
// Each continuous variable takes the smallest value its rows and lower bound
// allow. Candidates are visited in lexicographic order of choices and the first
// optimum wins, so results are deterministic.
//
// Parameters:
//   - ctx: Checked periodically for cancellation
//   - model: Model to solve
//
// Returns:
//   - *mip.Solution: Optimal solution, or StatusInfeasible when a continuous
//     variable would exceed its upper bound in every candidate
//   - error: ErrUnsupportedModel, a validation error, or ctx.Err()
func Enumerate(ctx context.Context, model *mip.Model) (*mip.Solution, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if model.Params.Maximize {
		return nil, fmt.Errorf("%w: maximization", ErrUnsupportedModel)
	}

	choices, limits, err := classifyRows(model)
	if err != nil {
		return nil, err
	}

	total := 1
	for _, c := range choices {
		total *= len(c)
		if total > maxEnumeration {
			return nil, fmt.Errorf("%w: more than %d candidates", ErrUnsupportedModel, maxEnumeration)
		}
	}

	var best []float64
	bestObj := math.Inf(1)
	pick := make([]int, len(choices))
	values := make([]float64, len(model.Vars))

	for visited := 0; ; visited++ {
		if visited%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if obj, ok := evaluateCandidate(model, choices, limits, pick, values); ok && obj < bestObj-1e-9 {
			bestObj = obj
			best = append(best[:0], values...)
		}

		if !advance(pick, choices) {
			break
		}
	}

	if best == nil {
		return &mip.Solution{Status: mip.StatusInfeasible}, nil
	}

	return &mip.Solution{Status: mip.StatusOptimal, Objective: bestObj, Values: best}, nil
}

// limitRow is a <= row: sum(binary terms) + coef*cont <= rhs.
type limitRow struct {
	binaries []mip.Term
	cont     int
	coef     float64
	rhs      float64
}

func classifyRows(model *mip.Model) ([][]int, []limitRow, error) {
	owner := make([]int, len(model.Vars))
	for i := range owner {
		owner[i] = -1
	}

	var choices [][]int
	var limits []limitRow
	for _, c := range model.Constraints {
		if isChoiceRow(model, c) {
			row := make([]int, 0, len(c.Terms))
			for _, t := range c.Terms {
				if owner[t.Var] >= 0 {
					return nil, nil, fmt.Errorf("%w: variable %s in two choice rows", ErrUnsupportedModel, model.Vars[t.Var].Name)
				}
				owner[t.Var] = len(choices)
				row = append(row, t.Var)
			}
			choices = append(choices, row)

			continue
		}

		if c.Sense != mip.LessEqual {
			return nil, nil, fmt.Errorf("%w: row %s", ErrUnsupportedModel, c.Name)
		}
		limit := limitRow{cont: -1, rhs: c.RHS}
		for _, t := range c.Terms {
			switch {
			case model.Vars[t.Var].Type == mip.Binary:
				limit.binaries = append(limit.binaries, t)
			case limit.cont < 0 && t.Coef < 0:
				limit.cont, limit.coef = t.Var, t.Coef
			default:
				return nil, nil, fmt.Errorf("%w: row %s", ErrUnsupportedModel, c.Name)
			}
		}
		limits = append(limits, limit)
	}

	for i, v := range model.Vars {
		if v.Type == mip.Binary && owner[i] < 0 {
			return nil, nil, fmt.Errorf("%w: binary %s outside a choice row", ErrUnsupportedModel, v.Name)
		}
		if v.Type == mip.Integer {
			return nil, nil, fmt.Errorf("%w: integer variable %s", ErrUnsupportedModel, v.Name)
		}
	}

	return choices, limits, nil
}

func isChoiceRow(model *mip.Model, c mip.Constraint) bool {
	if c.Sense != mip.Equal || c.RHS != 1 || len(c.Terms) == 0 {
		return false
	}
	for _, t := range c.Terms {
		if t.Coef != 1 || model.Vars[t.Var].Type != mip.Binary {
			return false
		}
	}

	return true
}

// evaluateCandidate fills values for the given choices and returns the objective.
func evaluateCandidate(model *mip.Model, choices [][]int, limits []limitRow, pick []int, values []float64) (float64, bool) {
	for i, v := range model.Vars {
		values[i] = 0
		if v.Type == mip.Continuous {
			values[i] = v.Lower
		}
	}
	for row, p := range pick {
		values[choices[row][p]] = 1
	}

	for _, l := range limits {
		sum := 0.0
		for _, t := range l.binaries {
			sum += t.Coef * values[t.Var]
		}
		if l.cont < 0 {
			if sum > l.rhs+1e-9 {
				return 0, false
			}

			continue
		}
		// sum + coef*x <= rhs with coef < 0  =>  x >= (sum - rhs) / -coef
		values[l.cont] = math.Max(values[l.cont], (sum-l.rhs)/-l.coef)
	}

	obj := 0.0
	for i, v := range model.Vars {
		if v.Type == mip.Continuous && values[i] > v.Upper {
			return 0, false
		}
		obj += v.Obj * values[i]
	}

	return obj, true
}

// advance moves pick to the next candidate; it reports false after the last one.
func advance(pick []int, choices [][]int) bool {
	for row := len(pick) - 1; row >= 0; row-- {
		pick[row]++
		if pick[row] < len(choices[row]) {
			return true
		}
		pick[row] = 0
	}

	return false
}
