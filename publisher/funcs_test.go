package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pushsub/types"
)

func TestFuncs_NilCallbacksSucceed(t *testing.T) {
	var f Funcs

	require.NoError(t, f.Publish(t.Context(), types.SubscriptionRecord{Endpoint: "https://push.example/1"}))
	require.NoError(t, f.Unpublish(t.Context()))
}

func TestFuncs_DelegatesToCallbacks(t *testing.T) {
	var published []string
	errUnpublish := errors.New("server down")

	f := Funcs{
		PublishFunc: func(_ context.Context, rec types.SubscriptionRecord) error {
			published = append(published, rec.Endpoint)
			return nil
		},
		UnpublishFunc: func(context.Context) error { return errUnpublish },
	}

	require.NoError(t, f.Publish(t.Context(), types.SubscriptionRecord{Endpoint: "https://push.example/1"}))
	require.Equal(t, []string{"https://push.example/1"}, published)
	require.ErrorIs(t, f.Unpublish(t.Context()), errUnpublish)
}

func TestNop(t *testing.T) {
	p := NewNop()

	require.NoError(t, p.Publish(t.Context(), types.SubscriptionRecord{}))
	require.NoError(t, p.Unpublish(t.Context()))
}
