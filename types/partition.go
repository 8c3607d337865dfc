package types

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"
)

// StrategyBestEffort names the greedy balancing strategy in partitions and logs.
const StrategyBestEffort = "best effort"

// Partition is the result of a grouping call: exactly N finalized groups.
//
// Every input identifier appears in exactly one group.
type Partition struct {
	// Groups holds the groups in order; group 0 receives pinned items.
	Groups []Group `json:"groups"`

	// Strategy names the balancer that filled the groups (solver name or "best effort").
	Strategy string `json:"strategy"`
}

// Len returns the number of groups.
func (p *Partition) Len() int {
	return len(p.Groups)
}

// Makespan returns the maximum group weight.
func (p *Partition) Makespan() float64 {
	makespan := 0.0
	for _, g := range p.Groups {
		makespan = math.Max(makespan, g.Weight)
	}

	return makespan
}

// TotalWeight returns the sum of all group weights.
func (p *Partition) TotalWeight() float64 {
	total := 0.0
	for _, g := range p.Groups {
		total += g.Weight
	}

	return total
}

// ItemCount returns the number of assigned items across all groups.
func (p *Partition) ItemCount() int {
	count := 0
	for _, g := range p.Groups {
		count += len(g.Items)
	}

	return count
}

// Items returns every assigned identifier, group by group.
func (p *Partition) Items() []string {
	items := make([]string, 0, p.ItemCount())
	for _, g := range p.Groups {
		items = append(items, g.Items...)
	}

	return items
}

// GroupOf returns the index of the group holding id, or -1.
func (p *Partition) GroupOf(id string) int {
	for idx, g := range p.Groups {
		for _, item := range g.Items {
			if item == id {
				return idx
			}
		}
	}

	return -1
}

// Fingerprint returns a stable digest of the group layout.
//
// Two partitions with the same groups in the same order (and the same item order
// inside each group) share a fingerprint. Weights and strategy are not included.
//
// Returns:
//   - string: 16 hex digit xxh3 digest
func (p *Partition) Fingerprint() string {
	h := xxh3.New()

	var sep [8]byte
	for idx, g := range p.Groups {
		binary.LittleEndian.PutUint64(sep[:], uint64(idx)) //nolint:gosec // index is never negative
		_, _ = h.Write(sep[:])
		for _, item := range g.Items {
			_, _ = h.Write([]byte(item))
			_, _ = h.Write([]byte{0})
		}
	}

	return fmt.Sprintf("%016x", h.Sum64())
}
