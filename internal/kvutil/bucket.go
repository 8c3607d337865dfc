// Package kvutil provides utilities for working with NATS JetStream KeyValue stores.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// planHistory keeps the previous plan revision next to the current one.
const planHistory = 2

// PlanBucketConfig returns the KV configuration of a plan bucket.
//
// Parameters:
//   - bucket: Bucket name
//   - ttl: How long plans remain (0 = no expiration)
//
// Returns:
//   - jetstream.KeyValueConfig: File-backed, single replica bucket configuration
func PlanBucketConfig(bucket string, ttl time.Duration) jetstream.KeyValueConfig {
	return jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "parallel test grouping plans",
		History:     planHistory,
		TTL:         ttl,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	}
}

// EnsureKVBucketWithRetry creates or opens a KV bucket with retry logic.
//
// Planners of concurrent CI jobs may create the same bucket at once. Creation
// is retried with exponential backoff, and an existing bucket is opened as is.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - maxRetries: Maximum number of attempts (default: 3)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: Last error once all attempts failed, or the context error
//
// Example:
//
//	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, kvutil.PlanBucketConfig("grouper-plans", time.Hour), 3)
func EnsureKVBucketWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := range maxRetries {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		// 10ms, 20ms, 40ms...
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

// OpenKVBucket opens an existing bucket without creating it.
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: jetstream.ErrBucketNotFound (wrapped) when the bucket does not exist
func OpenKVBucket(ctx context.Context, js jetstream.JetStream, bucket string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}

	return kv, nil
}
