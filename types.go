package paralleltests

import "github.com/fpbouchard/parallel-tests/types"

// Re-export types from the internal types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root package, while still
// providing a convenient `paralleltests.Item`, `paralleltests.Logger`, etc. for users.
type (
	Item        = types.Item
	Group       = types.Group
	Partition   = types.Partition
	Constraints = types.Constraints
)

// Re-export interfaces from the internal types package for convenience.
type (
	Balancer         = types.Balancer
	WeightSource     = types.WeightSource
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export constants from the internal types package.
const (
	UnknownWeight      = types.UnknownWeight
	StrategyBestEffort = types.StrategyBestEffort
)

// Re-export constructors from the internal types package.
var (
	// NewItem creates an item with a known weight.
	NewItem = types.NewItem

	// NewUnweightedItem creates an item whose weight is unknown; it counts as 1.
	NewUnweightedItem = types.NewUnweightedItem
)
