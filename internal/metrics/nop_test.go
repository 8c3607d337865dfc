package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_AllMethods(t *testing.T) {
	metrics := NewNop()

	require.NotPanics(t, func() {
		metrics.RecordPartition("best effort", 4, 100, 12.5)
		metrics.RecordPartition("", 0, 0, 0)
		metrics.RecordGroupWeight(0, 3)
		metrics.RecordGroupWeight(-1, -1)
		metrics.RecordPartitionFailure("solver")
		metrics.RecordSolve("cbc", 0.5, "optimal")
		metrics.RecordBestEffortFallback()
		metrics.RecordPlanPublish(true, 0.01)
		metrics.RecordPlanPublish(false, 0)
	})
}
