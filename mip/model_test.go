package mip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModel_Builder(t *testing.T) {
	m := NewModel("t")
	x := m.AddVar("x", 0, 0, 1, Binary)
	y := m.AddVar("y", 1, 0, math.Inf(1), Continuous)

	row := m.AddConstraint("c1", Equal, 1)
	m.AddTerm(x, 1)
	m.AddConstraint("c2", LessEqual, 0)
	m.AddTerm(x, 3)
	m.AddTerm(y, 0) // dropped
	m.AddTerm(y, -1)

	require.Equal(t, 0, x)
	require.Equal(t, 1, y)
	require.Equal(t, 0, row)
	require.Len(t, m.Constraints, 2)
	require.Equal(t, []Term{{Var: x, Coef: 1}}, m.Constraints[0].Terms)
	require.Equal(t, []Term{{Var: x, Coef: 3}, {Var: y, Coef: -1}}, m.Constraints[1].Terms)
	require.True(t, m.Params.MIP, "new models are MIP by default")
	require.Equal(t, 1, m.VarIndex("y"))
	require.Equal(t, -1, m.VarIndex("z"))
	require.NoError(t, m.Validate())

	require.Equal(t, 2.0, m.Evaluate(1, []float64{1, 1}))
}

func TestModel_AddTermPanics(t *testing.T) {
	t.Run("before any constraint", func(t *testing.T) {
		m := NewModel("t")
		x := m.AddVar("x", 0, 0, 1, Binary)
		require.Panics(t, func() { m.AddTerm(x, 1) })
	})

	t.Run("unknown variable", func(t *testing.T) {
		m := NewModel("t")
		m.AddConstraint("c", Equal, 1)
		require.Panics(t, func() { m.AddTerm(3, 1) })
	})
}

func TestModel_Validate(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *Model)
	}{
		{"bad variable name", func(m *Model) { m.AddVar("1x", 0, 0, 1, Binary) }},
		{"duplicate name", func(m *Model) {
			m.AddVar("x", 0, 0, 1, Binary)
			m.AddConstraint("x", Equal, 1)
		}},
		{"inverted bounds", func(m *Model) { m.AddVar("x", 0, 2, 1, Continuous) }},
		{"nan objective", func(m *Model) { m.AddVar("x", math.NaN(), 0, 1, Continuous) }},
		{"infinite rhs", func(m *Model) {
			x := m.AddVar("x", 0, 0, 1, Binary)
			m.AddConstraint("c", LessEqual, math.Inf(1))
			m.AddTerm(x, 1)
		}},
		{"nan coefficient", func(m *Model) {
			x := m.AddVar("x", 0, 0, 1, Binary)
			m.AddConstraint("c", LessEqual, 1)
			m.AddTerm(x, math.NaN())
		}},
		{"negative gap", func(m *Model) { m.SetParams(Params{MIP: true, RelativeGap: -1}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel("t")
			tt.build(m)
			require.ErrorIs(t, m.Validate(), ErrInvalidModel)
		})
	}
}

func TestEnumStrings(t *testing.T) {
	require.Equal(t, "B", Binary.String())
	require.Equal(t, "C", Continuous.String())
	require.Equal(t, "I", Integer.String())
	require.Equal(t, "<=", LessEqual.String())
	require.Equal(t, "=", Equal.String())
	require.Equal(t, ">=", GreaterEqual.String())
	require.Equal(t, "optimal", StatusOptimal.String())
	require.Equal(t, "unknown", Status(42).String())
}

func TestSolution_HasSolution(t *testing.T) {
	var nilSol *Solution
	require.False(t, nilSol.HasSolution())
	require.True(t, (&Solution{Status: StatusOptimal}).HasSolution())
	require.True(t, (&Solution{Status: StatusFeasible}).HasSolution())
	require.False(t, (&Solution{Status: StatusInfeasible}).HasSolution())
	require.False(t, (&Solution{Status: StatusUnknown}).HasSolution())
}
