package pushsub

import (
	"context"

	"github.com/arloliu/pushsub/publisher"
)

// Option configures a Handler with optional dependencies.
type Option func(*handlerOptions)

// handlerOptions holds optional Handler configuration.
type handlerOptions struct {
	publisher RecordPublisher
	hooks     *Hooks
	metrics   MetricsCollector
	logger    Logger
	listeners []Listener
}

// WithPublisher sets the record publisher that informs the owner of record
// about subscription changes.
//
// Parameters:
//   - p: RecordPublisher implementation (see the publisher package)
//
// Returns:
//   - Option: Functional option for NewHandler
//
// Example:
//
//	pub, _ := publisher.NewHTTP(publisher.HTTPConfig{
//	    URL:      "https://api.example.com/push",
//	    DeviceID: installationID,
//	})
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithPublisher(pub))
func WithPublisher(p RecordPublisher) Option {
	return func(o *handlerOptions) {
		o.publisher = p
	}
}

// WithPublishFuncs sets plain callbacks as the record publisher.
//
// Either callback may be nil, in which case that direction trivially succeeds.
//
// Example:
//
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithPublishFuncs(
//	    func(ctx context.Context, rec pushsub.SubscriptionRecord) error { return api.Save(ctx, rec) },
//	    func(ctx context.Context) error { return api.Delete(ctx) },
//	))
func WithPublishFuncs(
	publish func(ctx context.Context, record SubscriptionRecord) error,
	unpublish func(ctx context.Context) error,
) Option {
	return func(o *handlerOptions) {
		o.publisher = publisher.Funcs{PublishFunc: publish, UnpublishFunc: unpublish}
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions; nil callbacks are ignored
//
// Returns:
//   - Option: Functional option for NewHandler
//
// Example:
//
//	hooks := &pushsub.Hooks{
//	    OnError: func(ctx context.Context, err error) error {
//	        sentry.CaptureException(err)
//	        return nil
//	    },
//	}
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *handlerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Example:
//
//	h, err := pushsub.NewHandler(ctx, host, &cfg,
//	    pushsub.WithMetrics(pushsub.NewPrometheusMetrics(prometheus.DefaultRegisterer, "myapp")))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *handlerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewHandler
//
// Example:
//
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithLogger(pushsub.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(o *handlerOptions) {
		o.logger = logger
	}
}

// WithListener registers a status listener before the status probe starts,
// so it observes the initial loading state. May be given more than once.
//
// Example:
//
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithListener(func(s pushsub.State) {
//	    button.SetEnabled(s == pushsub.StateSubscribed || s == pushsub.StateNotSubscribed)
//	}))
func WithListener(l Listener) Option {
	return func(o *handlerOptions) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}
