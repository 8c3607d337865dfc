package types

import "context"

// WeightSource produces the weighted items to be grouped.
//
// Implementations:
//   - Static: fixed list (tests, callers holding runtime data)
//   - Steps: one item per feature file weighted by step count
//   - Scenarios: one item per scenario weighted by its steps
type WeightSource interface {
	// Items returns the weighted items.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []Item: Items in source-defined order
	//   - error: Extraction error (unreadable or unparsable input)
	Items(ctx context.Context) ([]Item, error)
}
