package paralleltests

import (
	"fmt"

	"github.com/fpbouchard/parallel-tests/mip"
	"github.com/fpbouchard/parallel-tests/mip/cbc"
	"github.com/fpbouchard/parallel-tests/mip/glpk"
	"github.com/fpbouchard/parallel-tests/types"
)

type solverFactory func(path string, logger types.Logger) mip.Solver

// registry holds the built-in backends in default preference order.
var registry = []struct {
	name    string
	factory solverFactory
}{
	{cbc.Name, func(path string, logger types.Logger) mip.Solver {
		return cbc.New(cbc.WithBinary(path), cbc.WithLogger(logger))
	}},
	{glpk.Name, func(path string, logger types.Logger) mip.Solver {
		return glpk.New(glpk.WithBinary(path), glpk.WithLogger(logger))
	}},
}

// SolverNames returns the names of the built-in solver backends in default
// preference order.
func SolverNames() []string {
	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.name)
	}

	return names
}

// NewSolver creates a built-in solver backend by name.
//
// Parameters:
//   - name: Backend name ("cbc", "glpsol")
//   - path: Explicit executable path, or "" for a PATH lookup
//   - logger: Logger receiving solver output (nil for no-op)
//
// Returns:
//   - mip.Solver: The backend (not probed for availability)
//   - error: ErrUnknownSolver for unregistered names
func NewSolver(name, path string, logger types.Logger) (mip.Solver, error) {
	for _, r := range registry {
		if r.name == name {
			return r.factory(path, logger), nil
		}
	}

	return nil, fmt.Errorf("%w: %q", types.ErrUnknownSolver, name)
}

// SolversFromConfig creates the solver backends listed in cfg, in order.
//
// Returns an empty list when the solver is disabled, which makes every
// grouping call use the greedy balancer.
//
// Parameters:
//   - cfg: Solver configuration
//   - logger: Logger receiving solver output (nil for no-op)
//
// Returns:
//   - []mip.Solver: Backends in preference order
//   - error: ErrUnknownSolver for unregistered names
func SolversFromConfig(cfg SolverConfig, logger types.Logger) ([]mip.Solver, error) {
	if cfg.Disabled {
		return nil, nil
	}

	solvers := make([]mip.Solver, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		s, err := NewSolver(name, cfg.Paths[name], logger)
		if err != nil {
			return nil, err
		}
		solvers = append(solvers, s)
	}

	return solvers, nil
}
