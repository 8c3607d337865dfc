package source

import (
	"context"
	"slices"
	"sync"

	"github.com/fpbouchard/parallel-tests/types"
)

// Static implements a weight source with a fixed list of items.
type Static struct {
	mu    sync.RWMutex
	items []types.Item
}

var _ types.WeightSource = (*Static)(nil)

// NewStatic creates a new static weight source.
//
// The source returns a fixed list of items that never changes.
// Useful for testing and for callers that already know their weights.
//
// Parameters:
//   - items: Fixed list of items
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	items := []types.Item{
//	    {ID: "features/login.feature", Weight: 12},
//	    {ID: "features/search.feature", Weight: 30},
//	}
//	src := source.NewStatic(items)
//	p, err := grouper.PartitionSource(ctx, src, 4, types.Constraints{})
func NewStatic(items []types.Item) *Static {
	return &Static{
		items: slices.Clone(items),
	}
}

// Items returns the static list of items.
//
// Returns:
//   - []types.Item: A copy of the fixed list of items
//   - error: Always nil (never fails)
func (s *Static) Items(_ context.Context) ([]types.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.items), nil
}

// Update replaces the item list.
//
// Parameters:
//   - items: New list of items
//
// Example:
//
//	src := source.NewStatic(initialItems)
//	// Later: timings from the previous run are known
//	src.Update(measuredItems)
func (s *Static) Update(items []types.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.Clone(items)
}
