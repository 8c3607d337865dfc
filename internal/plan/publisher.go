package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fpbouchard/parallel-tests/internal/logging"
	"github.com/fpbouchard/parallel-tests/internal/metrics"
	"github.com/fpbouchard/parallel-tests/internal/natsutil"
	"github.com/fpbouchard/parallel-tests/types"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher writes partitions to a NATS KV bucket.
//
// Versions are discovered from the run's existing meta key, so a re-run of the
// planner for the same run ID supersedes the earlier plan.
type Publisher struct {
	kv jetstream.KeyValue

	mu sync.Mutex

	logger  types.Logger
	metrics types.PlanMetrics
}

// NewPublisher creates a new plan publisher.
//
// Parameters:
//   - kv: NATS KV bucket for plans
//   - logger: Logger for publishing events (nil = no-op)
//   - collector: Metrics collector for publish outcomes (nil = no-op)
//
// Returns:
//   - *Publisher: A new publisher instance
func NewPublisher(kv jetstream.KeyValue, logger types.Logger, collector types.PlanMetrics) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if collector == nil {
		collector = metrics.NewNop()
	}

	return &Publisher{
		kv:      kv,
		logger:  logger,
		metrics: collector,
	}
}

// Publish publishes a partition under runID.
//
// Group keys are written first, then group keys left over from an earlier plan
// with more groups are deleted, and the meta key is written last.
//
// Parameters:
//   - ctx: Context for cancellation
//   - runID: Run identifier (letters, digits, '-' and '_')
//   - p: Finished partition
//
// Returns:
//   - *Meta: Metadata of the published plan
//   - error: types.ErrInvalidRunID, or types.ErrPublishFailed (wrapped, and also
//     matching types.ErrConnectivity when the server was unreachable)
//
// Example:
//
//	meta, err := publisher.Publish(ctx, os.Getenv("CI_PIPELINE_ID"), partition)
//	if err != nil {
//	    return err
//	}
//	log.Printf("plan v%d published (%d groups)", meta.Version, meta.Groups)
func (p *Publisher) Publish(ctx context.Context, runID string, partition *types.Partition) (*Meta, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}
	if partition == nil || partition.Len() == 0 {
		return nil, fmt.Errorf("%w: empty partition", types.ErrPublishFailed)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	meta, err := p.publish(ctx, runID, partition)
	p.metrics.RecordPlanPublish(err == nil, time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("plan publish failed", "run_id", runID, "error", err)
		return nil, err
	}

	p.logger.Info("plan published",
		"run_id", runID,
		"version", meta.Version,
		"groups", meta.Groups,
		"strategy", meta.Strategy,
		"fingerprint", meta.Fingerprint)

	return meta, nil
}

func (p *Publisher) publish(ctx context.Context, runID string, partition *types.Partition) (*Meta, error) {
	prev, err := p.previousVersion(ctx, runID)
	if err != nil {
		return nil, err
	}

	meta := &Meta{
		Version:     prev + 1,
		Groups:      partition.Len(),
		Strategy:    partition.Strategy,
		Fingerprint: partition.Fingerprint(),
		Makespan:    partition.Makespan(),
		TotalWeight: partition.TotalWeight(),
		Items:       partition.ItemCount(),
		PublishedAt: time.Now().UTC(),
	}

	for idx, g := range partition.Groups {
		group := Group{
			Version: meta.Version,
			Index:   idx,
			Items:   g.Items,
			Weight:  g.Weight,
		}
		if group.Items == nil {
			group.Items = []string{}
		}

		data, err := json.Marshal(group)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal group %d: %w", types.ErrPublishFailed, idx, err)
		}

		key := GroupKey(runID, idx)
		p.logger.Debug("publishing group", "key", key, "items", len(g.Items), "version", meta.Version)
		if _, err := p.kv.Put(ctx, key, data); err != nil {
			return nil, natsutil.Classify(types.ErrPublishFailed, "put "+key, err)
		}
	}

	if err := p.cleanupStaleGroups(ctx, runID, meta.Groups); err != nil {
		p.logger.Warn("stale group cleanup failed, continuing with publish", "run_id", runID, "error", err)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal meta: %w", types.ErrPublishFailed, err)
	}
	if _, err := p.kv.Put(ctx, MetaKey(runID), data); err != nil {
		return nil, natsutil.Classify(types.ErrPublishFailed, "put "+MetaKey(runID), err)
	}

	return meta, nil
}

// previousVersion returns the version of the run's current plan, or 0.
func (p *Publisher) previousVersion(ctx context.Context, runID string) (int64, error) {
	entry, err := p.kv.Get(ctx, MetaKey(runID))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, natsutil.Classify(types.ErrPublishFailed, "read "+MetaKey(runID), err)
	}

	var meta Meta
	if err := json.Unmarshal(entry.Value(), &meta); err != nil {
		p.logger.Warn("ignoring malformed plan meta", "run_id", runID, "error", err)
		return 0, nil
	}

	p.logger.Debug("found previous plan", "run_id", runID, "version", meta.Version)

	return meta.Version, nil
}

// cleanupStaleGroups removes group keys of runID with an index >= groups.
func (p *Publisher) cleanupStaleGroups(ctx context.Context, runID string, groups int) error {
	keys, err := p.kv.Keys(ctx)
	if err != nil {
		if types.IsNoKeysFoundError(err) || errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("failed to list keys: %w", err)
	}

	deletedCount := 0
	for _, key := range keys {
		idx, ok := groupIndex(runID, key)
		if !ok || idx < groups {
			continue
		}

		p.logger.Debug("deleting stale group", "key", key)
		if err := p.kv.Delete(ctx, key); err != nil {
			p.logger.Warn("failed to delete stale group", "key", key, "error", err)
			continue
		}
		deletedCount++
	}

	if deletedCount > 0 {
		p.logger.Info("cleaned up stale groups", "run_id", runID, "deleted_count", deletedCount)
	}

	return nil
}
