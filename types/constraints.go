package types

// Constraints restricts where items may land.
type Constraints struct {
	// SingleProcess lists regular expressions; any item whose identifier matches one
	// of them is pinned to group 0. Patterns are applied in order and an item is
	// pinned on its first match.
	SingleProcess []string `json:"singleProcess" yaml:"singleProcess"`

	// Isolate keeps group 0 out of automatic balancing so it holds only pinned items.
	Isolate bool `json:"isolate" yaml:"isolate"`
}
