package types

import "slices"

// Group is one worker's bucket of items.
//
// A group is mutable only while a partition is being built. Weight always equals the
// sum of the costs of Items; Add is the only way the two change together.
type Group struct {
	// Items holds the assigned item identifiers. Sorted once finalized.
	Items []string `json:"items"`

	// Weight is the accumulated cost of Items.
	Weight float64 `json:"weight"`
}

// Add appends an item identifier and accounts for its cost.
func (g *Group) Add(id string, cost float64) {
	g.Items = append(g.Items, id)
	g.Weight += cost
}

// AddItem appends an item using its effective cost.
func (g *Group) AddItem(item Item) {
	g.Add(item.ID, item.Cost())
}

// Len returns the number of items in the group.
func (g *Group) Len() int {
	return len(g.Items)
}

// Finalize sorts the item identifiers lexicographically so output does not depend
// on assignment order.
func (g *Group) Finalize() {
	slices.Sort(g.Items)
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	return Group{Items: slices.Clone(g.Items), Weight: g.Weight}
}
