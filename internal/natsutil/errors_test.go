package natsutil

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	grouptest "github.com/fpbouchard/parallel-tests/testing"
	"github.com/fpbouchard/parallel-tests/types"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: types.ErrConnectivity, want: true},
		{name: "timeout", err: nats.ErrTimeout, want: true},
		{name: "no servers", err: nats.ErrNoServers, want: true},
		{name: "closed", err: nats.ErrConnectionClosed, want: true},
		{name: "refused text", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "other", err: errors.New("bucket not found"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, Classify(types.ErrPublishFailed, "put", nil))
	})

	t.Run("connectivity failure", func(t *testing.T) {
		err := Classify(types.ErrPublishFailed, "put run-1.meta", nats.ErrTimeout)
		require.ErrorIs(t, err, types.ErrPublishFailed)
		require.ErrorIs(t, err, types.ErrConnectivity)
		require.ErrorIs(t, err, nats.ErrTimeout)
		require.Contains(t, err.Error(), "put run-1.meta")
	})

	t.Run("rejected request", func(t *testing.T) {
		cause := errors.New("wrong last sequence")
		err := Classify(types.ErrPublishFailed, "put", cause)
		require.ErrorIs(t, err, types.ErrPublishFailed)
		require.ErrorIs(t, err, cause)
		require.NotErrorIs(t, err, types.ErrConnectivity)
	})
}

func TestConnect(t *testing.T) {
	logger := grouptest.NewTestLogger(t)

	t.Run("embedded server", func(t *testing.T) {
		ns, _ := grouptest.StartEmbeddedNATS(t)

		nc, err := Connect(ns.ClientURL(), "grouper-test", time.Second, logger)
		require.NoError(t, err)
		defer nc.Close()
		require.True(t, nc.IsConnected())
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := Connect("nats://127.0.0.1:1", "grouper-test", 100*time.Millisecond, logger)
		require.ErrorIs(t, err, types.ErrConnectivity)
	})
}
