package pushsub

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/arloliu/pushsub/internal/logger"
	"github.com/arloliu/pushsub/internal/logging"
	"github.com/arloliu/pushsub/internal/metrics"
	"github.com/arloliu/pushsub/types"
)

// Re-export types from the types package.
//
// Type aliases let internal packages depend on `types` without importing the
// root package, while users still write pushsub.State, pushsub.Host, etc.
type (
	State              = types.State
	Permission         = types.Permission
	SubscribeOptions   = types.SubscribeOptions
	SubscriptionRecord = types.SubscriptionRecord
	SubscriptionKeys   = types.SubscriptionKeys
)

// Re-export interfaces from the types package for convenience.
type (
	Host             = types.Host
	WorkerRegistry   = types.WorkerRegistry
	Registration     = types.Registration
	PushManager      = types.PushManager
	Subscription     = types.Subscription
	PermissionGate   = types.PermissionGate
	RecordPublisher  = types.RecordPublisher
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export State constants from the types package.
const (
	StateLoading       = types.StateLoading
	StateUpdating      = types.StateUpdating
	StateNotSupported  = types.StateNotSupported
	StateDisabled      = types.StateDisabled
	StateNotSubscribed = types.StateNotSubscribed
	StateSubscribed    = types.StateSubscribed
	StateError         = types.StateError
)

// Re-export Permission constants from the types package.
const (
	PermissionDefault = types.PermissionDefault
	PermissionGranted = types.PermissionGranted
	PermissionDenied  = types.PermissionDenied
)

// ParseState parses a hyphenated state name such as "not-subscribed".
func ParseState(s string) (State, error) {
	return types.ParseState(s)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return logger.NewNop()
}

// NewSlogLogger adapts a *slog.Logger (nil means slog.Default()).
func NewSlogLogger(l *slog.Logger) Logger {
	return logging.NewSlog(l)
}

// NewZerologLogger adapts a zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return logging.NewZerolog(l)
}

// NewNopMetrics returns a collector that discards everything.
func NewNopMetrics() MetricsCollector {
	return metrics.NewNop()
}

// NewPrometheusMetrics returns a Prometheus-backed collector.
//
// Parameters:
//   - reg: Registerer (nil means prometheus.DefaultRegisterer)
//   - namespace: Metric namespace (empty means "pushsub")
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
