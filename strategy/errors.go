package strategy

import (
	"fmt"

	"github.com/fpbouchard/parallel-tests/types"
)

// ErrNoGroups indicates that items were given but no group can receive them.
var ErrNoGroups = fmt.Errorf("%w: balancer called without groups", types.ErrNoTargetGroups)
