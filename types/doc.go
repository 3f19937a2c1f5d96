// Package types provides core type definitions and interfaces for the pushsub library.
//
// This package contains shared types that are used across multiple packages in the
// library. By keeping these types in a separate package, the host and publisher
// implementations can depend on them without importing the root pushsub package.
//
// Key types:
//   - State: Subscription lifecycle state
//   - Permission: Notification consent reported by a PermissionGate
//   - Host, WorkerRegistry, PushManager, Subscription: Host capabilities the handler consumes
//   - SubscriptionRecord: Serializable subscription handed to publishers
//   - RecordPublisher: Owner-of-record synchronization interface
//   - Logger, MetricsCollector, Hooks: Observability interfaces
package types
