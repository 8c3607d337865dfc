package mip

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// VarType is the domain of a variable.
type VarType int

const (
	// Continuous variables take any value within their bounds.
	Continuous VarType = iota
	// Integer variables take integral values within their bounds.
	Integer
	// Binary variables take 0 or 1.
	Binary
)

// String returns the single-letter code used by classic solver APIs.
func (t VarType) String() string {
	switch t {
	case Continuous:
		return "C"
	case Integer:
		return "I"
	case Binary:
		return "B"
	default:
		return fmt.Sprintf("VarType(%d)", int(t))
	}
}

// Sense is the relation between a constraint's left-hand side and its right-hand side.
type Sense int

const (
	// LessEqual means lhs <= rhs.
	LessEqual Sense = iota
	// Equal means lhs == rhs.
	Equal
	// GreaterEqual means lhs >= rhs.
	GreaterEqual
)

// String returns the operator used in the LP format.
func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Var is a decision variable.
type Var struct {
	Name  string
	Obj   float64
	Lower float64
	Upper float64
	Type  VarType
}

// Term is one nonzero coefficient of a constraint row.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a linear row: sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Sense Sense
	RHS   float64
	Terms []Term
}

// Params holds solve parameters.
type Params struct {
	// MIP enables integrality of Integer and Binary variables.
	MIP bool

	// Maximize flips the objective direction; minimization is the default.
	Maximize bool

	// RelativeGap stops the search once the incumbent is proven within this
	// relative distance of the bound (0 means solve to optimality).
	RelativeGap float64

	// TimeLimit bounds backend run time (0 means no limit).
	TimeLimit time.Duration
}

// Model is a mixed-integer linear program under construction.
type Model struct {
	Name        string
	Vars        []Var
	Constraints []Constraint
	Params      Params
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name, Params: Params{MIP: true}}
}

// AddVar appends a variable and returns its index.
//
// Parameters:
//   - name: Variable name, must be unique and LP-safe (letters, digits, '_', '.')
//   - obj: Objective coefficient
//   - lower, upper: Bounds (math.Inf allowed)
//   - typ: Variable domain
//
// Returns:
//   - int: Index of the variable, also its position in Solution.Values
func (m *Model) AddVar(name string, obj, lower, upper float64, typ VarType) int {
	m.Vars = append(m.Vars, Var{Name: name, Obj: obj, Lower: lower, Upper: upper, Type: typ})

	return len(m.Vars) - 1
}

// AddConstraint appends an empty constraint row and returns its index.
//
// Coefficients are attached afterwards with AddTerm.
func (m *Model) AddConstraint(name string, sense Sense, rhs float64) int {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Sense: sense, RHS: rhs})

	return len(m.Constraints) - 1
}

// AddTerm appends a nonzero coefficient to the most recently added constraint.
//
// Zero coefficients are dropped. Calling AddTerm before any AddConstraint panics,
// as does a variable index that was never returned by AddVar.
func (m *Model) AddTerm(varIdx int, coef float64) {
	if len(m.Constraints) == 0 {
		panic("mip: AddTerm called before AddConstraint")
	}
	if varIdx < 0 || varIdx >= len(m.Vars) {
		panic(fmt.Sprintf("mip: variable index %d out of range", varIdx))
	}
	if coef == 0 {
		return
	}

	last := &m.Constraints[len(m.Constraints)-1]
	last.Terms = append(last.Terms, Term{Var: varIdx, Coef: coef})
}

// SetParams replaces the solve parameters.
func (m *Model) SetParams(p Params) {
	m.Params = p
}

// VarIndex returns the index of the named variable, or -1.
func (m *Model) VarIndex(name string) int {
	for idx, v := range m.Vars {
		if v.Name == name {
			return idx
		}
	}

	return -1
}

// Validate checks names, bounds and coefficients.
//
// Returns:
//   - error: ErrInvalidModel wrapped with the offending element, nil if valid
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.Vars)+len(m.Constraints))
	for _, v := range m.Vars {
		if !namePattern.MatchString(v.Name) {
			return fmt.Errorf("%w: variable name %q", ErrInvalidModel, v.Name)
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidModel, v.Name)
		}
		seen[v.Name] = struct{}{}
		if math.IsNaN(v.Obj) || math.IsInf(v.Obj, 0) {
			return fmt.Errorf("%w: objective coefficient of %q", ErrInvalidModel, v.Name)
		}
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return fmt.Errorf("%w: bounds of %q [%v, %v]", ErrInvalidModel, v.Name, v.Lower, v.Upper)
		}
	}

	for _, c := range m.Constraints {
		if !namePattern.MatchString(c.Name) {
			return fmt.Errorf("%w: constraint name %q", ErrInvalidModel, c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidModel, c.Name)
		}
		seen[c.Name] = struct{}{}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("%w: right-hand side of %q", ErrInvalidModel, c.Name)
		}
		for _, term := range c.Terms {
			if math.IsNaN(term.Coef) || math.IsInf(term.Coef, 0) {
				return fmt.Errorf("%w: coefficient in %q", ErrInvalidModel, c.Name)
			}
		}
	}

	if m.Params.RelativeGap < 0 {
		return fmt.Errorf("%w: negative relative gap %v", ErrInvalidModel, m.Params.RelativeGap)
	}

	return nil
}

// Evaluate returns the left-hand side of constraint c for the given values.
func (m *Model) Evaluate(c int, values []float64) float64 {
	sum := 0.0
	for _, term := range m.Constraints[c].Terms {
		sum += term.Coef * values[term.Var]
	}

	return sum
}
