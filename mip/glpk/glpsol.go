// Package glpk provides a mip.Solver backend driving the GNU GLPK glpsol executable.
//
// The backend requires glpsol 4.57 or later, which writes solutions in the GLPK
// raw text format ("s", "i", "j" and "e" lines).
package glpk

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
const Name = "glpsol"

// Solver runs models through glpsol.
type Solver struct {
	bin    solverexec.Binary
	logger types.Logger
}

var _ mip.Solver = (*Solver)(nil)

// Option configures a Solver.
type Option func(*Solver)

// WithBinary sets an explicit path to the glpsol executable instead of a PATH lookup.
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

// New creates a glpsol backend.
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

// Name returns "glpsol".
func (s *Solver) Name() string {
	return Name
}

// Available reports whether the glpsol executable can be found.
func (s *Solver) Available() bool {
	return s.bin.Available()
}

// Solve writes the model as LP, runs glpsol and reads its raw solution file.
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

			return ParseSolution(data, len(model.Vars))
		},
		s.logger,
	)
}

func buildArgs(modelPath, solutionPath string, params mip.Params) []string {
	args := []string{"--lp", modelPath}
	if !params.MIP {
		args = append(args, "--nomip")
	}
	if params.RelativeGap > 0 {
		args = append(args, "--mipgap", strconv.FormatFloat(params.RelativeGap, 'g', -1, 64))
	}
	if params.TimeLimit > 0 {
		secs := int(params.TimeLimit.Seconds())
		args = append(args, "--tmlim", strconv.Itoa(max(secs, 1)))
	}

	return append(args, "-w", solutionPath)
}

// ParseSolution reads a glpsol raw solution file.
//
// MIP solutions start with "s mip ROWS COLS STATUS OBJ" where STATUS is o (optimal),
// f (feasible), n (no feasible solution) or u (undefined), followed by
// "j COL VALUE" lines. Basic (LP) solutions start with
// "s bas ROWS COLS PRIM DUAL OBJ" followed by "j COL STAT PRIM DUAL" lines.
// Columns are numbered from 1 in model variable order.
//
// Parameters:
//   - data: Solution file contents
//   - numVars: Number of model variables
//
// Returns:
//   - *mip.Solution: Parsed solution
//   - error: Missing status line or malformed values
func ParseSolution(data []byte, numVars int) (*mip.Solution, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sol := &mip.Solution{Values: make([]float64, numVars)}
	kind := ""

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "s":
			if len(fields) < 2 {
				return nil, errors.New("malformed status line")
			}
			kind = fields[1]
			if err := parseStatusLine(sol, fields); err != nil {
				return nil, err
			}
		case "j":
			if err := parseColumnLine(sol, kind, fields); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if kind == "" {
		return nil, errors.New("no status line in solution file")
	}
	if !sol.HasSolution() {
		sol.Values = nil
	}

	return sol, nil
}

func parseStatusLine(sol *mip.Solution, fields []string) error {
	var statusFields []string
	var objField string

	switch fields[1] {
	case "mip":
		if len(fields) < 6 {
			return errors.New("malformed mip status line")
		}
		statusFields, objField = fields[4:5], fields[5]
	case "bas":
		if len(fields) < 7 {
			return fmt.Errorf("malformed %s status line", fields[1])
		}
		statusFields, objField = fields[4:6], fields[6]
	default:
		return fmt.Errorf("unsupported solution kind %q", fields[1])
	}

	sol.Status = mapStatus(fields[1], statusFields)

	obj, err := strconv.ParseFloat(objField, 64)
	if err != nil {
		return fmt.Errorf("objective value: %w", err)
	}
	sol.Objective = obj

	return nil
}

func mapStatus(kind string, codes []string) mip.Status {
	if kind == "mip" {
		switch codes[0] {
		case "o":
			return mip.StatusOptimal
		case "f":
			return mip.StatusFeasible
		case "n":
			return mip.StatusInfeasible
		default:
			return mip.StatusUnknown
		}
	}

	prim, dual := codes[0], codes[1]
	switch {
	case prim == "f" && dual == "f":
		return mip.StatusOptimal
	case prim == "n" || prim == "i":
		return mip.StatusInfeasible
	case prim == "f" && (dual == "n" || dual == "i"):
		return mip.StatusUnbounded
	case prim == "f":
		return mip.StatusFeasible
	default:
		return mip.StatusUnknown
	}
}

func parseColumnLine(sol *mip.Solution, kind string, fields []string) error {
	valueField := 2
	if kind == "bas" {
		valueField = 3
	}
	if len(fields) <= valueField {
		return fmt.Errorf("malformed column line %q", strings.Join(fields, " "))
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil || col < 1 || col > len(sol.Values) {
		return fmt.Errorf("column index %q out of range", fields[1])
	}

	value, err := strconv.ParseFloat(fields[valueField], 64)
	if err != nil {
		return fmt.Errorf("value of column %d: %w", col, err)
	}
	sol.Values[col-1] = value

	return nil
}
