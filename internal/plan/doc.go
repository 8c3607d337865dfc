// Package plan distributes a finished partition through a NATS JetStream KV bucket.
//
// A planner job computes the partition once and publishes it under a run ID. Each
// parallel worker then fetches only its own group:
//
//	<runID>.meta       plan metadata (group count, strategy, fingerprint, version)
//	<runID>.group-<i>  the items of group i
//
// The meta key is written last, so a reader that sees meta at version v finds every
// group key of that version already in place.
package plan
