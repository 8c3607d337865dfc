// Package strategy provides the built-in balancer implementations.
//
// A balancer fills a set of groups with weighted items so that the heaviest group
// (the makespan) is as light as possible. The package includes two balancers:
//
//   - Greedy: largest-first heuristic, deterministic, no external dependency
//   - Exact: mixed-integer formulation solved by an external mip.Solver backend
//
// # Balancer Selection Guide
//
// Greedy:
//   - Used when no solver backend is available ("best effort")
//   - Sorts items by descending cost, then always fills the lightest group
//   - Makespan within (4/3 - 1/(3m)) of the optimum for m groups
//   - Never fails once groups are given
//
// Exact:
//   - Used when a solver backend (cbc, glpsol) is available
//   - Minimizes the makespan up to a small relative gap (0.002 by default)
//   - Any solver failure is fatal; there is no retry with Greedy
//
// Custom balancers can be implemented by satisfying the types.Balancer interface.
package strategy
