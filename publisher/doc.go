// Package publisher provides types.RecordPublisher implementations.
//
// A record publisher keeps the remote owner of record (typically the
// application server that sends push messages) informed about the current
// push subscription of this device:
//
//   - Funcs: plain callbacks, either of which may be nil
//   - Nop: accepts everything without side effects
//   - HTTP: JSON envelope POSTed to (and DELETEd from) an HTTP endpoint
//   - KV: envelope stored in a NATS JetStream KeyValue bucket
//   - Request: envelope sent as a NATS request that the owner must acknowledge
//
// Publishers make exactly one attempt per call. Failures are returned to the
// handler, which decides how to compensate; rejections by the owner are
// distinguished from transport failures via ErrRejected and
// types.ErrConnectivity.
package publisher
