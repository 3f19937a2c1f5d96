package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StartEmbeddedNATS starts an embedded NATS server with JetStream enabled for testing.
//
// The server listens on a random local port and keeps JetStream data in a
// temporary directory. Server and connection are shut down via t.Cleanup().
//
// Parameters:
//   - t: Testing context for logging and cleanup
//
// Returns:
//   - *server.Server: The embedded NATS server instance
//   - *nats.Conn: Connected NATS client (closed automatically on test completion)
//
// Example:
//
//	func TestKVPublisher(t *testing.T) {
//	    _, nc := pushsubtest.StartEmbeddedNATS(t)
//	    pub, err := publisher.NewKV(t.Context(), nc, publisher.KVConfig{DeviceID: "device-1"})
//	    require.NoError(t, err)
//	}
func StartEmbeddedNATS(t testing.TB) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("Failed to create embedded NATS server: %v", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("Embedded NATS server not ready within timeout")
	}

	nc, err := nats.Connect(ns.ClientURL(),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		ns.Shutdown()
		t.Fatalf("Failed to connect to embedded NATS server: %v", err)
	}

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

// CreateJetStreamKV creates an in-memory KV bucket for a test.
//
// Example:
//
//	_, nc := pushsubtest.StartEmbeddedNATS(t)
//	kv := pushsubtest.CreateJetStreamKV(t, nc, "push-subscriptions")
func CreateJetStreamKV(t testing.TB, nc *nats.Conn, bucketName string) jetstream.KeyValue {
	t.Helper()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("Failed to get JetStream context: %v", err)
	}

	kv, err := js.CreateKeyValue(t.Context(), jetstream.KeyValueConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Test KV bucket: %s", bucketName),
		Storage:     jetstream.MemoryStorage,
		Replicas:    1,
	})
	if err != nil {
		t.Fatalf("Failed to create KV bucket %s: %v", bucketName, err)
	}

	return kv
}

// Responder answers NATS requests on a subject with a fixed reply function.
//
// The subscription is drained when the test completes.
//
// Parameters:
//   - t: Testing context for cleanup
//   - nc: Connection to subscribe on
//   - subject: Subject to answer
//   - reply: Builds the response payload from the request payload
//
// Example:
//
//	pushsubtest.Responder(t, nc, "push.records", func(req []byte) []byte {
//	    return []byte(`{"ok":true}`)
//	})
func Responder(t testing.TB, nc *nats.Conn, subject string, reply func(req []byte) []byte) {
	t.Helper()

	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		_ = msg.Respond(reply(msg.Data))
	})
	if err != nil {
		t.Fatalf("Failed to subscribe to %s: %v", subject, err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("Failed to flush subscription to %s: %v", subject, err)
	}

	t.Cleanup(func() { _ = sub.Unsubscribe() })
}
