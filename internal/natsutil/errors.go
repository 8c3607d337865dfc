package natsutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fpbouchard/parallel-tests/types"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// IsConnectivityError checks if an error is caused by connectivity issues.
//
// This includes NATS timeouts, connection refused, disconnections, etc.
// Kept in internal/natsutil to avoid importing NATS dependencies in types/ package.
//
// Parameters:
//   - err: Error to check
//
// Returns:
//   - bool: true if error indicates connectivity issue
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, types.ErrConnectivity) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, jetstream.ErrNoHeartbeat) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}

// Classify wraps a KV failure with the sentinel of the failed operation.
//
// Connectivity failures additionally match types.ErrConnectivity so callers can
// tell an unreachable server from a rejected request.
//
// Parameters:
//   - sentinel: Operation sentinel (e.g. types.ErrPublishFailed)
//   - op: Short operation description used in the message
//   - err: The underlying error (nil returns nil)
//
// Returns:
//   - error: Wrapped error matching sentinel and err with errors.Is
func Classify(sentinel error, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsConnectivityError(err) && !errors.Is(err, types.ErrConnectivity) {
		return fmt.Errorf("%w: %s: %w: %w", sentinel, op, types.ErrConnectivity, err)
	}

	return fmt.Errorf("%w: %s: %w", sentinel, op, err)
}
