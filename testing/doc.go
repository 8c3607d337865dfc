// Package testing provides test utilities for the grouper.
//
// This package offers helpers for setting up test environments: an embedded NATS
// server for plan distribution tests and fake solver backends for the exact
// balancer. It follows Go's convention of providing testing utilities in a
// dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewUnavailableSolver: Backend whose availability probe fails
//   - NewNoSolutionSolver: Backend that always reports a status without a solution
//   - NewEnumeratingSolver: Exhaustive backend for small assignment models
//
// Example usage:
//
//	import (
//	    "testing"
//	    grouptest "github.com/fpbouchard/parallel-tests/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    g := paralleltests.NewGrouper(paralleltests.WithSolvers(grouptest.NewEnumeratingSolver()))
//	    // ...
//	}
package testing
