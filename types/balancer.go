package types

import "context"

// Balancer fills a set of groups with weighted items.
//
// Implementations:
//   - Greedy: largest-first heuristic, no external dependency
//   - Exact: mixed-integer formulation handed to an external solver
//
// The Grouper selects one balancer per call and passes it only the groups that
// take part in automatic balancing (all groups, or groups 1..N-1 when isolated).
//
// Balancer implementations should:
//   - Assign every item to exactly one of the given groups
//   - Be deterministic (same input and same backend produce the same output)
//   - Keep each group's Weight equal to the sum of its item costs
//   - Never fall back to another policy on failure; return an error instead
type Balancer interface {
	// Name identifies the balancing strategy in logs and in the resulting Partition.
	Name() string

	// Assign distributes items across groups, mutating the groups in place.
	//
	// Parameters:
	//   - ctx: Context for cancellation (solver backends honor it)
	//   - items: Items to place; read-only
	//   - groups: Target groups; must be non-empty when items is non-empty
	//
	// Returns:
	//   - error: Fatal balancing error (e.g., ErrNoSolution, ErrInconsistentSolution)
	Assign(ctx context.Context, items []Item, groups []*Group) error
}
