package strategy

import (
	"cmp"
	"container/heap"
	"context"
	"slices"

	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/fpbouchard/parallel-tests/types"
)

// Greedy implements largest-processing-time-first balancing.
type Greedy struct {
	logger types.Logger
}

var _ types.Balancer = (*Greedy)(nil)

// GreedyOption configures a Greedy balancer.
type GreedyOption func(*Greedy)

// WithGreedyLogger sets the logger for the greedy balancer.
func WithGreedyLogger(logger types.Logger) GreedyOption {
	return func(g *Greedy) {
		g.logger = logger
	}
}

// NewGreedy creates a new greedy balancer.
//
// Parameters:
//   - opts: Optional configuration (WithGreedyLogger)
//
// Returns:
//   - *Greedy: Initialized greedy balancer
//
// Example:
//
//	balancer := strategy.NewGreedy()
//	err := balancer.Assign(ctx, items, groups)
func NewGreedy(opts ...GreedyOption) *Greedy {
	g := &Greedy{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Name returns "best effort".
func (g *Greedy) Name() string {
	return types.StrategyBestEffort
}

// Assign distributes items across groups, largest first.
//
// The algorithm:
//  1. Sort items by descending cost, keeping input order for equal costs
//  2. Give each item to the currently lightest group (lowest index on ties)
//
// Unknown weights count as 1. Runs in O(n log n + n log m).
//
// Parameters:
//   - ctx: Unused; the greedy pass does not block
//   - items: Items to place
//   - groups: Target groups, mutated in place
//
// Returns:
//   - error: ErrNoGroups when items are given without groups
func (g *Greedy) Assign(_ context.Context, items []types.Item, groups []*types.Group) error {
	if len(items) == 0 {
		return nil
	}
	if len(groups) == 0 {
		return ErrNoGroups
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b types.Item) int {
		return cmp.Compare(b.Cost(), a.Cost())
	})

	h := newGroupHeap(groups)
	for _, item := range sorted {
		idx := h.lightest()
		groups[idx].AddItem(item)
		h.fix()
	}

	g.logger.Debug("greedy assignment complete", "items", len(items), "groups", len(groups))

	return nil
}

// groupHeap is a min-heap of group indices ordered by (weight, index).
type groupHeap struct {
	groups []*types.Group
	order  []int
}

func newGroupHeap(groups []*types.Group) *groupHeap {
	h := &groupHeap{groups: groups, order: make([]int, len(groups))}
	for i := range groups {
		h.order[i] = i
	}
	heap.Init(h)

	return h
}

func (h *groupHeap) lightest() int {
	return h.order[0]
}

// fix restores heap order after the lightest group gained weight.
func (h *groupHeap) fix() {
	heap.Fix(h, 0)
}

func (h *groupHeap) Len() int { return len(h.order) }

func (h *groupHeap) Less(i, j int) bool {
	a, b := h.order[i], h.order[j]
	if wa, wb := h.groups[a].Weight, h.groups[b].Weight; wa != wb {
		return wa < wb
	}

	return a < b
}

func (h *groupHeap) Swap(i, j int) { h.order[i], h.order[j] = h.order[j], h.order[i] }

func (h *groupHeap) Push(x any) { h.order = append(h.order, x.(int)) }

func (h *groupHeap) Pop() any {
	n := len(h.order)
	x := h.order[n-1]
	h.order = h.order[:n-1]

	return x
}
