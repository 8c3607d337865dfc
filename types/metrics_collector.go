package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	PartitionMetrics
	SolverMetrics
	PlanMetrics
}

// PartitionMetrics defines metrics for grouping calls.
type PartitionMetrics interface {
	// RecordPartition records a completed grouping call.
	//
	// Parameters:
	//   - strategy: Balancer name ("cbc", "glpsol", "best effort")
	//   - groups: Number of groups produced
	//   - items: Number of items grouped
	//   - makespan: Maximum group weight
	RecordPartition(strategy string, groups, items int, makespan float64)

	// RecordGroupWeight sets the weight of a group in the latest partition (gauge metric).
	RecordGroupWeight(group int, weight float64)

	// RecordPartitionFailure records a grouping call that returned an error.
	//
	// Parameters:
	//   - reason: "config", "solver" or "source"
	RecordPartitionFailure(reason string)
}

// SolverMetrics defines metrics for external solver invocations.
type SolverMetrics interface {
	// RecordSolve records a solver invocation.
	//
	// Parameters:
	//   - solver: Backend name
	//   - duration: Time taken in seconds
	//   - status: Solution status ("optimal", "feasible", "infeasible", ...)
	RecordSolve(solver string, duration float64, status string)

	// RecordBestEffortFallback records a call that used the greedy balancer because
	// no solver backend was available.
	RecordBestEffortFallback()
}

// PlanMetrics defines metrics for plan distribution.
type PlanMetrics interface {
	// RecordPlanPublish records a plan publish attempt.
	//
	// Parameters:
	//   - success: true if every key was written
	//   - duration: Time taken in seconds
	RecordPlanPublish(success bool, duration float64)
}
