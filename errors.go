package paralleltests

import "github.com/fpbouchard/parallel-tests/types"

// Sentinel errors returned by the Grouper, re-exported from the types package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrInvalidGroupCount is returned when fewer than one group is requested.
	ErrInvalidGroupCount = types.ErrInvalidGroupCount

	// ErrInvalidPattern is returned when a single-process pattern does not compile.
	ErrInvalidPattern = types.ErrInvalidPattern

	// ErrDuplicateItem is returned when two items share an identifier.
	ErrDuplicateItem = types.ErrDuplicateItem

	// ErrInvalidWeight is returned when an item weight is NaN or infinite.
	ErrInvalidWeight = types.ErrInvalidWeight

	// ErrNoTargetGroups is returned when isolation leaves no group for unpinned items.
	ErrNoTargetGroups = types.ErrNoTargetGroups

	// ErrWeightSourceRequired is returned when a nil weight source is given.
	ErrWeightSourceRequired = types.ErrWeightSourceRequired

	// ErrUnknownSolver is returned for unregistered solver backend names.
	ErrUnknownSolver = types.ErrUnknownSolver

	// ErrNoSolution is returned when the solver finds no feasible or optimal solution.
	ErrNoSolution = types.ErrNoSolution

	// ErrInconsistentSolution is returned when a solution does not place an item exactly once.
	ErrInconsistentSolution = types.ErrInconsistentSolution

	// ErrPartitionFailed is returned when balancing fails for any other reason.
	ErrPartitionFailed = types.ErrPartitionFailed
)

// IsConfigurationError reports whether err was detected before any balancing work.
func IsConfigurationError(err error) bool {
	return types.IsConfigurationError(err)
}
