// Package cbc provides a mip.Solver backend driving the COIN-OR CBC executable.
package cbc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/fpbouchard/parallel-tests/internal/solverexec"
	"github.com/fpbouchard/parallel-tests/mip"
	"github.com/fpbouchard/parallel-tests/types"
)

// Name is the backend name.
const Name = "cbc"

// Solver runs models through the cbc command line solver.
type Solver struct {
	bin    solverexec.Binary
	logger types.Logger
}

var _ mip.Solver = (*Solver)(nil)

// Option configures a Solver.
type Option func(*Solver)

// WithBinary sets an explicit path to the cbc executable instead of a PATH lookup.
func WithBinary(path string) Option {
	return func(s *Solver) {
		s.bin.Path = path
	}
}

// WithLogger sets the logger receiving solver output.
func WithLogger(logger types.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// New creates a CBC backend.
//
// Parameters:
//   - opts: Optional configuration (WithBinary, WithLogger)
//
// Returns:
//   - *Solver: Backend; Available reports whether cbc can be found
func New(opts ...Option) *Solver {
	s := &Solver{
		bin:    solverexec.Binary{Name: Name},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	return s
}

// Name returns "cbc".
func (s *Solver) Name() string {
	return Name
}

// Available reports whether the cbc executable can be found.
func (s *Solver) Available() bool {
	return s.bin.Available()
}

// Solve writes the model as LP, runs cbc and reads its solution file.
func (s *Solver) Solve(ctx context.Context, model *mip.Model) (*mip.Solution, error) {
	return solverexec.Execute(ctx, s.bin, model,
		func(r *solverexec.Run) []string {
			return buildArgs(r.ModelPath(), r.SolutionPath(), model.Params)
		},
		func(r *solverexec.Run) (*mip.Solution, error) {
			data, err := os.ReadFile(r.SolutionPath())
			if err != nil {
				return nil, fmt.Errorf("read solution: %w", err)
			}

			return ParseSolution(data, model)
		},
		s.logger,
	)
}

func buildArgs(modelPath, solutionPath string, params mip.Params) []string {
	args := []string{modelPath}
	if params.RelativeGap > 0 {
		args = append(args, "ratioGap", strconv.FormatFloat(params.RelativeGap, 'g', -1, 64))
	}
	if params.TimeLimit > 0 {
		args = append(args, "sec", strconv.FormatFloat(params.TimeLimit.Seconds(), 'f', -1, 64))
	}
	if params.MIP {
		args = append(args, "solve")
	} else {
		args = append(args, "initialSolve")
	}

	return append(args, "solution", solutionPath)
}

// ParseSolution reads a cbc solution file.
//
// The first line holds the status and objective, e.g.
// "Optimal - objective value 17.00000000". Each following line holds
// "index name value reduced-cost", optionally prefixed by "**" for values that
// violate a bound. cbc lists only nonzero columns, so missing variables are 0.
//
// Parameters:
//   - data: Solution file contents
//   - model: Model that was solved; used to map column names back to indexes
//
// Returns:
//   - *mip.Solution: Parsed solution
//   - error: Unreadable header or value
func ParseSolution(data []byte, model *mip.Model) (*mip.Solution, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, errors.New("empty solution file")
	}

	header := strings.TrimSpace(sc.Text())
	sol := &mip.Solution{Values: make([]float64, len(model.Vars))}
	sol.Status = parseStatus(header)

	if idx := strings.LastIndex(header, "objective value"); idx >= 0 {
		raw := strings.TrimSpace(header[idx+len("objective value"):])
		if obj, err := strconv.ParseFloat(raw, 64); err == nil {
			sol.Objective = obj
		}
	}

	index := make(map[string]int, len(model.Vars))
	for idx, v := range model.Vars {
		index[v.Name] = idx
	}

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}

		varIdx, ok := index[fields[1]]
		if !ok {
			// Row activities of some cbc builds; only columns matter.
			continue
		}

		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("value of %s: %w", fields[1], err)
		}
		sol.Values[varIdx] = value
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// A stopped run carries an incumbent unless cbc fell back to the relaxation.
	if strings.HasPrefix(header, "Stopped") && !strings.Contains(header, "no integer") {
		sol.Status = mip.StatusFeasible
	}

	if !sol.HasSolution() {
		sol.Values = nil
	}

	return sol, nil
}

func parseStatus(header string) mip.Status {
	lower := strings.ToLower(header)

	switch {
	case strings.HasPrefix(lower, "optimal"):
		return mip.StatusOptimal
	case strings.Contains(lower, "infeasible"):
		return mip.StatusInfeasible
	case strings.Contains(lower, "unbounded"):
		return mip.StatusUnbounded
	default:
		return mip.StatusUnknown
	}
}
