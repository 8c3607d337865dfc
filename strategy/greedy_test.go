package strategy

import (
	"testing"

	"github.com/fpbouchard/parallel-tests/types"
	"github.com/stretchr/testify/require"
)

func newGroups(n int) []*types.Group {
	groups := make([]*types.Group, n)
	for i := range groups {
		groups[i] = &types.Group{}
	}

	return groups
}

func TestGreedy_Name(t *testing.T) {
	require.Equal(t, "best effort", NewGreedy().Name())
}

func TestGreedy_BasicBalance(t *testing.T) {
	items := []types.Item{
		types.NewItem("a", 10),
		types.NewItem("b", 9),
		types.NewItem("c", 8),
		types.NewItem("d", 7),
	}
	groups := newGroups(2)

	require.NoError(t, NewGreedy().Assign(t.Context(), items, groups))

	require.Equal(t, []string{"a", "d"}, groups[0].Items)
	require.Equal(t, 17.0, groups[0].Weight)
	require.Equal(t, []string{"b", "c"}, groups[1].Items)
	require.Equal(t, 17.0, groups[1].Weight)
}

func TestGreedy_LargestFirst(t *testing.T) {
	// input order is not weight order; assignment must still go largest first
	items := []types.Item{
		types.NewItem("small", 1),
		types.NewItem("large", 10),
		types.NewItem("medium", 5),
	}
	groups := newGroups(2)

	require.NoError(t, NewGreedy().Assign(t.Context(), items, groups))

	require.Equal(t, []string{"large"}, groups[0].Items)
	require.Equal(t, []string{"medium", "small"}, groups[1].Items)
}

func TestGreedy_StableTies(t *testing.T) {
	items := []types.Item{
		types.NewItem("first", 2),
		types.NewItem("second", 2),
		types.NewItem("third", 2),
	}
	groups := newGroups(3)

	require.NoError(t, NewGreedy().Assign(t.Context(), items, groups))

	require.Equal(t, []string{"first"}, groups[0].Items)
	require.Equal(t, []string{"second"}, groups[1].Items)
	require.Equal(t, []string{"third"}, groups[2].Items)
}

func TestGreedy_UnknownWeightCountsAsOne(t *testing.T) {
	items := []types.Item{
		types.NewUnweightedItem("u1"),
		types.NewUnweightedItem("u2"),
		types.NewItem("zero", 0),
	}
	groups := newGroups(2)

	require.NoError(t, NewGreedy().Assign(t.Context(), items, groups))

	require.Equal(t, []string{"u1", "zero"}, groups[0].Items)
	require.Equal(t, 1.0, groups[0].Weight)
	require.Equal(t, []string{"u2"}, groups[1].Items)
	require.Equal(t, 1.0, groups[1].Weight)
}

func TestGreedy_RespectsExistingWeight(t *testing.T) {
	groups := newGroups(2)
	groups[0].Add("pinned", 5)

	items := []types.Item{types.NewItem("a", 5), types.NewItem("c", 5)}
	require.NoError(t, NewGreedy().Assign(t.Context(), items, groups))

	require.Equal(t, []string{"pinned", "c"}, groups[0].Items)
	require.Equal(t, []string{"a"}, groups[1].Items)
}

func TestGreedy_DoesNotMutateInput(t *testing.T) {
	items := []types.Item{types.NewItem("a", 1), types.NewItem("b", 3)}
	require.NoError(t, NewGreedy().Assign(t.Context(), items, newGroups(2)))
	require.Equal(t, "a", items[0].ID)
}

func TestGreedy_NoGroups(t *testing.T) {
	err := NewGreedy().Assign(t.Context(), []types.Item{types.NewItem("a", 1)}, nil)
	require.ErrorIs(t, err, ErrNoGroups)
	require.ErrorIs(t, err, types.ErrNoTargetGroups)

	require.NoError(t, NewGreedy().Assign(t.Context(), nil, nil))
}
