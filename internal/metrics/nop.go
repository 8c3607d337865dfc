// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/fpbouchard/parallel-tests/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// PartitionMetrics implementation

// RecordPartition discards the partition metric.
func (n *NopMetrics) RecordPartition(_ /* strategy */ string, _ /* groups */, _ /* items */ int, _ /* makespan */ float64) {
}

// RecordGroupWeight discards the group weight metric.
func (n *NopMetrics) RecordGroupWeight(_ /* group */ int, _ /* weight */ float64) {}

// RecordPartitionFailure discards the failure metric.
func (n *NopMetrics) RecordPartitionFailure(_ /* reason */ string) {}

// SolverMetrics implementation

// RecordSolve discards the solver metric.
func (n *NopMetrics) RecordSolve(_ /* solver */ string, _ /* duration */ float64, _ /* status */ string) {}

// RecordBestEffortFallback discards the fallback metric.
func (n *NopMetrics) RecordBestEffortFallback() {}

// PlanMetrics implementation

// RecordPlanPublish discards the publish metric.
func (n *NopMetrics) RecordPlanPublish(_ /* success */ bool, _ /* duration */ float64) {}
