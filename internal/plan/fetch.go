package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fpbouchard/parallel-tests/internal/natsutil"
	"github.com/fpbouchard/parallel-tests/types"
	"github.com/nats-io/nats.go/jetstream"
)

// fetchAttempts bounds how often Fetch re-reads meta while a plan is being replaced.
const fetchAttempts = 3

// FetchMeta reads the metadata of a run's plan.
//
// Returns:
//   - *Meta: Plan metadata
//   - error: types.ErrPlanNotFound when the run has no plan, types.ErrInvalidRunID,
//     or a KV failure (matching types.ErrConnectivity when the server was unreachable)
func FetchMeta(ctx context.Context, kv jetstream.KeyValue, runID string) (*Meta, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}

	var meta Meta
	if err := getJSON(ctx, kv, MetaKey(runID), &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Fetch reads one group of a run's plan.
//
// The group must carry the same version as the plan metadata. A mismatch means the
// plan is being republished; meta is re-read a few times before giving up.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Plan bucket
//   - runID: Run identifier
//   - index: Zero-based group index (worker number)
//
// Returns:
//   - *Group: The group's items and weight
//   - error: types.ErrPlanNotFound (wrapped) for a missing plan, an index out of
//     range, or a version mismatch that persists
//
// Example:
//
//	g, err := plan.Fetch(ctx, kv, runID, workerIndex)
//	if err != nil {
//	    return err
//	}
//	runTests(g.Items)
func Fetch(ctx context.Context, kv jetstream.KeyValue, runID string, index int) (*Group, error) {
	var lastErr error
	for range fetchAttempts {
		meta, err := FetchMeta(ctx, kv, runID)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= meta.Groups {
			return nil, fmt.Errorf("%w: group %d out of range [0, %d) for run %q",
				types.ErrPlanNotFound, index, meta.Groups, runID)
		}

		var group Group
		if err := getJSON(ctx, kv, GroupKey(runID, index), &group); err != nil {
			return nil, err
		}
		if group.Version == meta.Version {
			return &group, nil
		}

		lastErr = fmt.Errorf("%w: group %d has version %d, plan has version %d",
			types.ErrPlanNotFound, index, group.Version, meta.Version)
	}

	return nil, lastErr
}

// WaitForPlan blocks until the run has a plan and returns its metadata.
//
// Returns immediately when the plan already exists.
//
// Returns:
//   - *Meta: Metadata of the first plan observed
//   - error: ctx.Err() (wrapped) when ctx ends first, or a watch failure
func WaitForPlan(ctx context.Context, kv jetstream.KeyValue, runID string) (*Meta, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}

	watcher, err := kv.Watch(ctx, MetaKey(runID))
	if err != nil {
		return nil, natsutil.Classify(types.ErrPlanNotFound, "watch "+MetaKey(runID), err)
	}
	defer func() { _ = watcher.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for plan %q: %w", runID, ctx.Err())
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil, fmt.Errorf("%w: watcher for run %q closed", types.ErrPlanNotFound, runID)
			}
			// nil marks the end of the initial values replay
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			var meta Meta
			if err := json.Unmarshal(entry.Value(), &meta); err != nil {
				continue
			}

			return &meta, nil
		}
	}
}

func getJSON(ctx context.Context, kv jetstream.KeyValue, key string, v any) error {
	entry, err := kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("%w: key %s", types.ErrPlanNotFound, key)
	}
	if err != nil {
		if natsutil.IsConnectivityError(err) {
			return fmt.Errorf("%w: read %s: %w", types.ErrConnectivity, key, err)
		}

		return fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(entry.Value(), v); err != nil {
		return fmt.Errorf("%w: malformed value at %s: %w", types.ErrPlanNotFound, key, err)
	}

	return nil
}
