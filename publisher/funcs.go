package publisher

import (
	"context"

	"github.com/arloliu/pushsub/types"
)

// Funcs adapts plain callbacks to types.RecordPublisher.
//
// A nil callback is treated as trivially successful.
//
// Example:
//
//	pub := publisher.Funcs{
//	    PublishFunc: func(ctx context.Context, rec types.SubscriptionRecord) error {
//	        return api.SaveSubscription(ctx, rec)
//	    },
//	}
type Funcs struct {
	PublishFunc   func(ctx context.Context, record types.SubscriptionRecord) error
	UnpublishFunc func(ctx context.Context) error
}

var _ types.RecordPublisher = Funcs{}

// Publish calls PublishFunc if set.
func (f Funcs) Publish(ctx context.Context, record types.SubscriptionRecord) error {
	if f.PublishFunc == nil {
		return nil
	}

	return f.PublishFunc(ctx, record)
}

// Unpublish calls UnpublishFunc if set.
func (f Funcs) Unpublish(ctx context.Context) error {
	if f.UnpublishFunc == nil {
		return nil
	}

	return f.UnpublishFunc(ctx)
}

// Nop is a publisher that accepts every change without side effects.
type Nop struct{}

var _ types.RecordPublisher = Nop{}

// NewNop returns a no-op publisher.
func NewNop() Nop {
	return Nop{}
}

// Publish always succeeds.
func (Nop) Publish(context.Context, types.SubscriptionRecord) error { return nil }

// Unpublish always succeeds.
func (Nop) Unpublish(context.Context) error { return nil }
