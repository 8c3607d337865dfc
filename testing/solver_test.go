package testing

import (
	"context"
	"math"
	"testing"

	"github.com/fpbouchard/parallel-tests/mip"
	"github.com/stretchr/testify/require"
)

// twoByTwo builds a tiny assignment model: items of cost 3 and 2 over two groups.
func twoByTwo() *mip.Model {
	m := mip.NewModel("t")
	costs := []float64{3, 2}
	for i := range costs {
		for j := range 2 {
			m.AddVar(varName(i, j), 0, 0, 1, mip.Binary)
		}
	}
	y := m.AddVar("y", 1, 0, math.Inf(1), mip.Continuous)
	for i := range costs {
		m.AddConstraint("one_"+string(rune('a'+i)), mip.Equal, 1)
		m.AddTerm(i*2, 1)
		m.AddTerm(i*2+1, 1)
	}
	for j := range 2 {
		m.AddConstraint("cap_"+string(rune('a'+j)), mip.LessEqual, 0)
		for i, c := range costs {
			m.AddTerm(i*2+j, c)
		}
		m.AddTerm(y, -1)
	}

	return m
}

func varName(i, j int) string {
	return "x_" + string(rune('a'+i)) + "_" + string(rune('a'+j))
}

func TestEnumerate(t *testing.T) {
	sol, err := Enumerate(t.Context(), twoByTwo())
	require.NoError(t, err)
	require.Equal(t, mip.StatusOptimal, sol.Status)
	require.InDelta(t, 3.0, sol.Objective, 1e-9)
	// first optimum in lexicographic order: item a -> group 0, item b -> group 1
	require.Equal(t, []float64{1, 0, 0, 1, 3}, sol.Values)
}

func TestEnumerate_Unsupported(t *testing.T) {
	t.Run("maximize", func(t *testing.T) {
		m := twoByTwo()
		m.Params.Maximize = true
		_, err := Enumerate(t.Context(), m)
		require.ErrorIs(t, err, ErrUnsupportedModel)
	})

	t.Run("free binary", func(t *testing.T) {
		m := mip.NewModel("t")
		m.AddVar("x", 1, 0, 1, mip.Binary)
		_, err := Enumerate(t.Context(), m)
		require.ErrorIs(t, err, ErrUnsupportedModel)
	})

	t.Run("greater-equal row", func(t *testing.T) {
		m := twoByTwo()
		m.AddConstraint("ge", mip.GreaterEqual, 1)
		m.AddTerm(0, 1)
		_, err := Enumerate(t.Context(), m)
		require.ErrorIs(t, err, ErrUnsupportedModel)
	})
}

func TestEnumerate_Infeasible(t *testing.T) {
	m := twoByTwo()
	m.Vars[len(m.Vars)-1].Upper = 2

	sol, err := Enumerate(t.Context(), m)
	require.NoError(t, err)
	require.Equal(t, mip.StatusInfeasible, sol.Status)
	require.False(t, sol.HasSolution())
}

func TestEnumerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Enumerate(ctx, twoByTwo())
	require.ErrorIs(t, err, context.Canceled)
}

func TestFakeSolvers(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		s := NewUnavailableSolver("cbc")
		require.Equal(t, "cbc", s.Name())
		require.False(t, s.Available())
		_, err := s.Solve(t.Context(), twoByTwo())
		require.ErrorIs(t, err, mip.ErrBackendFailed)
	})

	t.Run("no solution", func(t *testing.T) {
		s := NewNoSolutionSolver("glpsol", mip.StatusInfeasible)
		require.True(t, s.Available())
		sol, err := s.Solve(t.Context(), twoByTwo())
		require.NoError(t, err)
		require.False(t, sol.HasSolution())
	})

	t.Run("records calls", func(t *testing.T) {
		s := NewEnumeratingSolver()
		require.Nil(t, s.LastModel())
		m := twoByTwo()
		_, err := s.Solve(t.Context(), m)
		require.NoError(t, err)
		require.Equal(t, 1, s.Calls())
		require.Same(t, m, s.LastModel())
	})
}
