package types

import (
	"context"
	"time"
)

// SubscriptionKeys holds the client keys a push message must be encrypted for.
type SubscriptionKeys struct {
	// P256DH is the client public key (base64url).
	P256DH string `json:"p256dh"`

	// Auth is the client authentication secret (base64url).
	Auth string `json:"auth"`
}

// SubscriptionRecord is the serializable form of a push subscription.
//
// The JSON shape matches what browsers produce for PushSubscription.toJSON(),
// so records can be handed to any web push sender unchanged.
type SubscriptionRecord struct {
	// Endpoint is the push service URL for this subscription.
	Endpoint string `json:"endpoint"`

	// ExpirationTime is the expiry in Unix milliseconds, nil when the subscription does not expire.
	ExpirationTime *int64 `json:"expirationTime"`

	// Keys are the client encryption keys.
	Keys SubscriptionKeys `json:"keys"`
}

// ExpiresAt returns the expiration time and whether the record expires at all.
func (r SubscriptionRecord) ExpiresAt() (time.Time, bool) {
	if r.ExpirationTime == nil {
		return time.Time{}, false
	}

	return time.UnixMilli(*r.ExpirationTime), true
}

// RecordPublisher synchronizes subscription records with the remote owner of record.
//
// Publish must durably record a new subscription; a returned error makes the handler
// tear the subscription down again. Unpublish removes the current record; its error is
// logged but never blocks the local transition.
//
// Implementations must be safe for concurrent use.
type RecordPublisher interface {
	// Publish records a newly created subscription.
	Publish(ctx context.Context, record SubscriptionRecord) error

	// Unpublish removes the record of the current subscription.
	Unpublish(ctx context.Context) error
}
