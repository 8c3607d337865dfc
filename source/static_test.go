package source

import (
	"context"
	"testing"

	"github.com/fpbouchard/parallel-tests/types"
	"github.com/stretchr/testify/require"
)

func TestStatic_Items(t *testing.T) {
	t.Run("returns all items", func(t *testing.T) {
		items := []types.Item{
			{ID: "features/a.feature", Weight: 100},
			{ID: "features/b.feature", Weight: 150},
			types.NewUnweightedItem("features/c.feature"),
		}
		src := NewStatic(items)

		result, err := src.Items(context.Background())

		require.NoError(t, err)
		require.Len(t, result, 3)
		require.Equal(t, items, result)
	})

	t.Run("returns empty list when no items", func(t *testing.T) {
		src := NewStatic([]types.Item{})

		result, err := src.Items(context.Background())

		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("does not modify original slice", func(t *testing.T) {
		items := []types.Item{
			{ID: "p1", Weight: 100},
		}
		src := NewStatic(items)

		result, err := src.Items(context.Background())
		require.NoError(t, err)

		// Modify returned slice
		result[0].Weight = 999

		// Original should be unchanged
		result2, _ := src.Items(context.Background())
		require.Equal(t, 100.0, result2[0].Weight)
	})
}

func TestStatic_Update(t *testing.T) {
	src := NewStatic([]types.Item{{ID: "a", Weight: 1}})
	src.Update([]types.Item{{ID: "a", Weight: 4}, {ID: "b", Weight: 2}})

	result, err := src.Items(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.Item{{ID: "a", Weight: 4}, {ID: "b", Weight: 2}}, result)
}
