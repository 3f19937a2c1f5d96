package natsutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/pushsub/types"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", types.ErrConnectivity, true},
		{"nats timeout", nats.ErrTimeout, true},
		{"no responders", fmt.Errorf("request: %w", nats.ErrNoResponders), true},
		{"connection closed", nats.ErrConnectionClosed, true},
		{"no stream response", jetstream.ErrNoStreamResponse, true},
		{"deadline", context.DeadlineExceeded, true},
		{"refused text", errors.New("dial tcp 127.0.0.1:4222: connection refused"), true},
		{"key not found", jetstream.ErrKeyNotFound, false},
		{"rejection", errors.New("record rejected"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	require.NoError(t, Classify(nil))

	rejected := errors.New("record rejected")
	require.Equal(t, rejected, Classify(rejected))

	wrapped := Classify(nats.ErrTimeout)
	require.ErrorIs(t, wrapped, types.ErrConnectivity)
	require.ErrorIs(t, wrapped, nats.ErrTimeout)

	// Already classified errors are not wrapped twice
	require.Equal(t, types.ErrConnectivity, Classify(types.ErrConnectivity))
}
