// Package paralleltests partitions weighted test items into balanced groups for
// parallel test runs.
//
// Each item (a feature file or a single scenario) carries an estimated cost. A
// Grouper splits the items into a fixed number of groups, one per worker process,
// so that the heaviest group, and with it the wall-clock time of the run, is as
// small as possible.
//
// # Quick Start
//
// Basic usage with the greedy balancer:
//
//	import paralleltests "github.com/fpbouchard/parallel-tests"
//
//	items := []paralleltests.Item{
//	    {ID: "features/login.feature", Weight: 12},
//	    {ID: "features/search.feature", Weight: 30},
//	}
//
//	g := paralleltests.NewGrouper()
//	p, err := g.Partition(ctx, items, 4, paralleltests.Constraints{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Features
//
//   - Exact Balancing: Min-max assignment solved by an external MILP solver (cbc, glpsol)
//   - Best Effort Fallback: Largest-first greedy balancing when no solver is installed
//   - Pinning: Items matching single-process patterns always land in group 0
//   - Isolation: Group 0 can be reserved for pinned items only
//   - Weight Sources: Step counts or scenarios parsed from Gherkin feature files
//   - Plan Distribution: Finished plans published to a NATS JetStream KV bucket
//
// # Architecture
//
// Every call runs the same pipeline:
//
//	VALIDATE → SELECT BALANCER → PIN → BALANCE → FINALIZE
//
// The balancer is chosen once per call by probing the configured solver backends in
// order. A failing solver aborts the call; it never falls back to the greedy balancer
// halfway, so a partition always reflects the policy that was selected.
//
// # Advanced Usage
//
// Solver backends and weight sources:
//
//	import (
//	    paralleltests "github.com/fpbouchard/parallel-tests"
//	    "github.com/fpbouchard/parallel-tests/mip/cbc"
//	    "github.com/fpbouchard/parallel-tests/source"
//	)
//
//	g := paralleltests.NewGrouper(
//	    paralleltests.WithSolvers(cbc.New()),
//	    paralleltests.WithSolveTimeout(time.Minute),
//	)
//
//	src := source.NewSteps(files, source.WithIgnoreTagPattern(`@wip`))
//	p, err := g.PartitionSource(ctx, src, 8, paralleltests.Constraints{
//	    SingleProcess: []string{`^features/db/`},
//	    Isolate:       true,
//	})
//
// See the examples/ directory for complete working examples.
package paralleltests
