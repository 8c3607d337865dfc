package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the grouper.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by kind (configuration, solver, distribution)
//   - Use consistent messages across similar error types

// Configuration errors - reported before any assignment work begins.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidGroupCount is returned when fewer than one group is requested.
	ErrInvalidGroupCount = errors.New("group count must be at least 1")

	// ErrInvalidPattern is returned when a single-process pattern does not compile.
	ErrInvalidPattern = errors.New("invalid single-process pattern")

	// ErrDuplicateItem is returned when two items share an identifier.
	ErrDuplicateItem = errors.New("duplicate item identifier")

	// ErrInvalidWeight is returned when an item weight is NaN or infinite.
	ErrInvalidWeight = errors.New("invalid item weight")

	// ErrNoTargetGroups is returned when items remain to balance but isolation leaves
	// no group to receive them.
	ErrNoTargetGroups = errors.New("no groups available for balancing")

	// ErrWeightSourceRequired is returned when a nil weight source is given.
	ErrWeightSourceRequired = errors.New("weight source is required")

	// ErrUnknownSolver is returned when a configured solver backend name is not registered.
	ErrUnknownSolver = errors.New("unknown solver backend")
)

// Solver errors - fatal for the whole partitioning call.
var (
	// ErrSolverRequired is returned when an exact balancer has no solver backend.
	ErrSolverRequired = errors.New("solver backend is required")

	// ErrSolverUnavailable is returned when an exact balancer's backend cannot run.
	ErrSolverUnavailable = errors.New("solver backend unavailable")

	// ErrNoSolution is returned when the solver reports no feasible or optimal solution.
	ErrNoSolution = errors.New("no solution found")

	// ErrInconsistentSolution is returned when the solution places an item in zero or
	// several groups.
	ErrInconsistentSolution = errors.New("inconsistent solver solution")

	// ErrPartitionFailed is returned when balancing fails for any other reason.
	ErrPartitionFailed = errors.New("partitioning failed")
)

// Distribution errors - plan publishing over NATS.
var (
	// ErrConnectivity indicates a NATS/KV connectivity issue.
	ErrConnectivity = errors.New("connectivity issue")

	// ErrPublishFailed is returned when publishing a plan to NATS KV fails.
	ErrPublishFailed = errors.New("failed to publish plan")

	// ErrPlanNotFound is returned when a requested plan or group is not in the bucket.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrInvalidRunID is returned when a run identifier is not a valid KV key token.
	ErrInvalidRunID = errors.New("invalid run ID")

	// ErrNoKeysFound is returned when NATS KV returns no keys (expected condition).
	ErrNoKeysFound = errors.New("no keys found")
)

// IsConfigurationError reports whether err is one of the configuration errors that
// are detected before any balancing work starts.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true for configuration errors
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidGroupCount) ||
		errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrDuplicateItem) ||
		errors.Is(err, ErrInvalidWeight) ||
		errors.Is(err, ErrNoTargetGroups) ||
		errors.Is(err, ErrWeightSourceRequired) ||
		errors.Is(err, ErrUnknownSolver)
}

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// This function handles NATS-specific "no keys found" errors which may come as:
//   - Direct error: "nats: no keys found"
//   - Wrapped error: "failed to list KV keys: nats: no keys found"
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found, false otherwise
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoKeysFound) {
		return true
	}

	return strings.Contains(err.Error(), "no keys found")
}
