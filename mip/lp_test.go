package mip

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteLP(t *testing.T) {
	m := NewModel("t")
	x := m.AddVar("x", 0, 0, 1, Binary)
	y := m.AddVar("y", 1, 0, math.Inf(1), Continuous)
	m.AddConstraint("c1", Equal, 1)
	m.AddTerm(x, 1)
	m.AddConstraint("c2", LessEqual, 0)
	m.AddTerm(x, 3.5)
	m.AddTerm(y, -1)

	var buf bytes.Buffer
	require.NoError(t, WriteLP(&buf, m))

	want := strings.Join([]string{
		`\ Model t`,
		"Minimize",
		" obj: + 0 x + 1 y",
		"Subject To",
		" c1: + 1 x = 1",
		" c2: + 3.5 x - 1 y <= 0",
		"Bounds",
		"Binaries",
		" x",
		"End",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}

func TestWriteLP_BoundsAndRelaxation(t *testing.T) {
	m := NewModel("t")
	m.AddVar("free_var", 0, math.Inf(-1), math.Inf(1), Continuous)
	m.AddVar("lower_only", 0, 2, math.Inf(1), Continuous)
	m.AddVar("boxed", 0, -1, 4, Integer)
	m.AddVar("flag", 0, 0, 1, Binary)
	m.SetParams(Params{MIP: false, Maximize: true})

	var buf bytes.Buffer
	require.NoError(t, WriteLP(&buf, m))
	out := buf.String()

	require.Contains(t, out, "Maximize\n")
	require.Contains(t, out, " free_var free\n")
	require.Contains(t, out, " lower_only >= 2\n")
	require.Contains(t, out, " -1 <= boxed <= 4\n")
	require.Contains(t, out, " 0 <= flag <= 1\n", "relaxed binaries keep their box")
	require.NotContains(t, out, "Binaries")
	require.NotContains(t, out, "Generals")
}

func TestWriteLP_WrapsLongRows(t *testing.T) {
	m := NewModel("t")
	for i := 0; i < 20; i++ {
		m.AddVar("v"+strings.Repeat("a", i+1), 1, 0, 1, Binary)
	}
	m.AddConstraint("all", Equal, 1)
	for i := range m.Vars {
		m.AddTerm(i, 1)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLP(&buf, m))

	for _, line := range strings.Split(buf.String(), "\n") {
		require.Less(t, len(line), 255)
	}
}

func TestWriteLP_InvalidModel(t *testing.T) {
	m := NewModel("t")
	m.AddVar("bad name", 0, 0, 1, Binary)

	var buf bytes.Buffer
	require.ErrorIs(t, WriteLP(&buf, m), ErrInvalidModel)
	require.Zero(t, buf.Len())
}
