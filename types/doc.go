// Package types provides core type definitions and interfaces for the grouper.
//
// This package contains shared types that are used across multiple packages in the
// module. By keeping these types in a separate package, we avoid import cycles
// between the root paralleltests package and its strategy, source and internal
// implementations.
//
// Key types:
//   - Item: Weighted unit of work (test file or scenario)
//   - Group: One worker's bucket of items with its accumulated weight
//   - Partition: Ordered sequence of exactly N finalized groups
//   - Constraints: Single-process pinning patterns and the isolate flag
//   - Balancer: Strategy interface filling groups with items
//   - WeightSource: Producer of weighted items
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
