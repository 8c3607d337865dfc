package types

import "math"

// UnknownWeight marks an item whose execution cost could not be estimated.
const UnknownWeight = -1.0

// Item represents a weighted unit of work.
//
// The identifier is the item's identity (a file path or a "path:line" scenario key).
// The weight is an estimated cost used only for balancing; it is never interpreted
// otherwise. Items are treated as immutable once produced by a WeightSource.
type Item struct {
	// ID uniquely identifies the item.
	ID string `json:"id"`

	// Weight is the estimated execution cost. Any negative value means the
	// weight is unknown (see UnknownWeight).
	Weight float64 `json:"weight"`
}

// NewItem creates an item with a known weight.
func NewItem(id string, weight float64) Item {
	return Item{ID: id, Weight: weight}
}

// NewUnweightedItem creates an item whose weight is unknown.
func NewUnweightedItem(id string) Item {
	return Item{ID: id, Weight: UnknownWeight}
}

// HasWeight reports whether the item carries a known weight.
func (i Item) HasWeight() bool {
	return i.Weight >= 0
}

// Cost returns the weight used for balancing.
//
// Unknown weights count as 1 so that unweighted items still spread across groups.
// A known weight of 0 is kept as is.
//
// Returns:
//   - float64: Effective balancing weight (always >= 0 for valid items)
func (i Item) Cost() float64 {
	if !i.HasWeight() {
		return 1
	}

	return i.Weight
}

// Valid reports whether the weight is a usable number (not NaN or infinite).
func (i Item) Valid() bool {
	return !math.IsNaN(i.Weight) && !math.IsInf(i.Weight, 0)
}
