// Package pushsub manages the push notification subscription of one device.
//
// A Handler tracks whether the device is eligible for push messages, whether
// the user granted notification permission and whether a push subscription is
// active. It drives the subscribe and unsubscribe flows against the host
// environment and keeps a remote owner of record in sync through a
// RecordPublisher.
//
// # Quick Start
//
//	cfg := pushsub.DefaultConfig()
//	cfg.ApplicationServerKey = "BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U"
//
//	h, err := pushsub.NewHandler(ctx, host, &cfg,
//	    pushsub.WithPublishFuncs(saveSubscription, deleteSubscription),
//	    pushsub.WithListener(func(s pushsub.State) { render(s) }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, in response to the user pressing a button:
//	h.Toggle(ctx)
//
// # States
//
// The handler starts in StateLoading and settles after probing the host:
//
//	loading → not-supported | disabled | not-subscribed | subscribed | error
//
// Subscribe and Unsubscribe pass through StateUpdating:
//
//	not-subscribed → updating → subscribed | not-subscribed | disabled | error
//	subscribed     → updating → not-subscribed | error
//
// StateNotSupported is terminal. StateDisabled is only left through Refresh,
// after the user changed the permission in the host settings.
//
// # Record Synchronization
//
// A new subscription is handed to RecordPublisher.Publish. If the owner of
// record rejects it, the push subscription is torn down again and the handler
// lands on StateNotSubscribed, so the device never believes it is subscribed
// while the server does not. Unpublish failures are logged and reported
// through Hooks.OnError but never block the local transition.
//
// The publisher package provides HTTP, NATS request and NATS KV publishers.
// The host package provides an in-memory host for tests and demos.
//
// # Observing State
//
// AddListener registers a callback that receives the current state and then
// every change, in order. Watch offers the same stream as a channel and
// WaitState waits for one particular state.
//
// See the examples/ directory for complete working examples.
package pushsub
