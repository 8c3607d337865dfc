package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup_Add(t *testing.T) {
	var g Group
	g.Add("b", 2)
	g.AddItem(NewItem("a", 3))
	g.AddItem(NewUnweightedItem("c"))

	require.Equal(t, []string{"b", "a", "c"}, g.Items)
	require.Equal(t, 6.0, g.Weight)
	require.Equal(t, 3, g.Len())
}

func TestGroup_Finalize(t *testing.T) {
	g := Group{Items: []string{"features/b.feature", "features/a.feature", "c"}, Weight: 4}
	g.Finalize()

	require.Equal(t, []string{"c", "features/a.feature", "features/b.feature"}, g.Items)
	require.Equal(t, 4.0, g.Weight, "finalize must not touch the weight")
}

func TestGroup_Clone(t *testing.T) {
	g := Group{Items: []string{"a"}, Weight: 1}
	c := g.Clone()
	c.Add("b", 1)

	require.Equal(t, []string{"a"}, g.Items)
	require.Equal(t, 1.0, g.Weight)
}
