package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fpbouchard/parallel-tests/types"
)

const (
	metaSuffix  = ".meta"
	groupInfix  = ".group-"
	runIDSource = `^[A-Za-z0-9_-]+$`
)

var runIDPattern = regexp.MustCompile(runIDSource)

// Meta describes a published plan.
type Meta struct {
	// Version increases by one each time a plan is published under the same run ID.
	Version int64 `json:"version"`

	// Groups is the number of group keys of this version.
	Groups int `json:"groups"`

	// Strategy names the balancer that produced the plan.
	Strategy string `json:"strategy"`

	// Fingerprint is the partition fingerprint (types.Partition.Fingerprint).
	Fingerprint string `json:"fingerprint"`

	Makespan    float64   `json:"makespan"`
	TotalWeight float64   `json:"totalWeight"`
	Items       int       `json:"items"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Group is one worker's share of a published plan.
type Group struct {
	// Version matches Meta.Version of the plan the group belongs to.
	Version int64    `json:"version"`
	Index   int      `json:"index"`
	Items   []string `json:"items"`
	Weight  float64  `json:"weight"`
}

// ValidateRunID checks that runID can be used as a KV key token.
//
// Returns:
//   - error: types.ErrInvalidRunID (wrapped) when runID is empty or holds
//     characters other than letters, digits, '-' and '_'
func ValidateRunID(runID string) error {
	if !runIDPattern.MatchString(runID) {
		return fmt.Errorf("%w: %q must match %s", types.ErrInvalidRunID, runID, runIDSource)
	}

	return nil
}

// MetaKey returns the KV key of a run's plan metadata.
func MetaKey(runID string) string {
	return runID + metaSuffix
}

// GroupKey returns the KV key of group index of a run.
func GroupKey(runID string, index int) string {
	return runID + groupInfix + strconv.Itoa(index)
}

// groupIndex parses the group index out of key, reporting false for keys that
// are not group keys of runID.
func groupIndex(runID, key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, runID+groupInfix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}

	return idx, true
}
