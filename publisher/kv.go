package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/pushsub/internal/keyhash"
	"github.com/arloliu/pushsub/internal/kvutil"
	"github.com/arloliu/pushsub/internal/natsutil"
	"github.com/arloliu/pushsub/types"
)

const (
	// DefaultKVBucket is the bucket used when KVConfig.Bucket is empty.
	DefaultKVBucket = "push-subscriptions"

	// DefaultKVKeyPrefix is the key prefix used when KVConfig.KeyPrefix is empty.
	DefaultKVKeyPrefix = "sub"
)

// KVConfig configures a JetStream KV publisher.
type KVConfig struct {
	// Bucket is the KV bucket name (default: "push-subscriptions").
	Bucket string

	// KeyPrefix prefixes every record key (default: "sub").
	KeyPrefix string

	// DeviceID identifies this installation; the record key is derived from it.
	// Required; must stay the same across restarts.
	DeviceID string

	// MaxAge expires records the owner never refreshes (0: keep forever).
	MaxAge time.Duration

	// Replicas is the bucket replica count when the bucket is created (default: 1).
	Replicas int

	// Logger receives debug output (default: no-op).
	Logger types.Logger
}

// KV stores subscription records in a NATS JetStream KeyValue bucket.
//
// Each device owns one key, "<prefix>.<xxh3(deviceID)>", holding a JSON
// Envelope. Senders watch the bucket to learn about new and removed
// subscriptions.
type KV struct {
	kv       jetstream.KeyValue
	key      string
	deviceID string
	logger   types.Logger
	last     lastRecord
}

var _ types.RecordPublisher = (*KV)(nil)

// NewKV creates or opens the bucket and returns a publisher writing to it.
//
// Parameters:
//   - ctx: Context for bucket setup
//   - nc: NATS connection
//   - cfg: Publisher configuration
//
// Returns:
//   - *KV: Publisher instance
//   - error: types.ErrPublisherConfig for invalid settings, or the bucket setup error
//
// Example:
//
//	pub, err := publisher.NewKV(ctx, nc, publisher.KVConfig{DeviceID: "kitchen-tablet"})
//	h, err := pushsub.NewHandler(ctx, host, &cfg, pushsub.WithPublisher(pub))
func NewKV(ctx context.Context, nc *nats.Conn, cfg KVConfig) (*KV, error) {
	if nc == nil {
		return nil, fmt.Errorf("%w: NATS connection is required", types.ErrPublisherConfig)
	}
	cfg = kvDefaults(cfg)
	if err := validateKVConfig(cfg); err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	replicas := cfg.Replicas
	if replicas <= 0 {
		replicas = 1
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "Push subscription records",
		History:     1,
		TTL:         cfg.MaxAge,
		Replicas:    replicas,
	}, 3)
	if err != nil {
		return nil, natsutil.Classify(err)
	}

	return NewKVFromBucket(kv, cfg)
}

// NewKVFromBucket returns a publisher writing to an existing bucket.
func NewKVFromBucket(kv jetstream.KeyValue, cfg KVConfig) (*KV, error) {
	if kv == nil {
		return nil, fmt.Errorf("%w: KV bucket is required", types.ErrPublisherConfig)
	}
	cfg = kvDefaults(cfg)
	if err := validateKVConfig(cfg); err != nil {
		return nil, err
	}

	return &KV{
		kv:       kv,
		key:      keyhash.Key(cfg.KeyPrefix, cfg.DeviceID),
		deviceID: cfg.DeviceID,
		logger:   defaultLogger(cfg.Logger),
	}, nil
}

func kvDefaults(cfg KVConfig) KVConfig {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultKVBucket
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKVKeyPrefix
	}

	return cfg
}

func validateKVConfig(cfg KVConfig) error {
	if err := checkDeviceID(cfg.DeviceID); err != nil {
		return err
	}
	if !keyhash.ValidPrefix(cfg.KeyPrefix) {
		return fmt.Errorf("%w: invalid key prefix %q", types.ErrPublisherConfig, cfg.KeyPrefix)
	}
	if cfg.MaxAge < 0 {
		return fmt.Errorf("%w: MaxAge must be >= 0", types.ErrPublisherConfig)
	}

	return nil
}

// Key returns the bucket key this publisher writes.
func (p *KV) Key() string {
	return p.key
}

// DeviceID returns the device id stored in every envelope.
func (p *KV) DeviceID() string {
	return p.deviceID
}

// Publish stores the record under Key().
func (p *KV) Publish(ctx context.Context, record types.SubscriptionRecord) error {
	data, err := json.Marshal(newEnvelope(p.deviceID, &record))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	rev, err := p.kv.Put(ctx, p.key, data)
	if err != nil {
		return natsutil.Classify(err)
	}
	p.last.set(&record)

	p.logger.Debug("subscription record stored", "key", p.key, "revision", rev)

	return nil
}

// Unpublish deletes Key(). A missing key counts as success.
func (p *KV) Unpublish(ctx context.Context) error {
	existed, err := kvutil.DeleteKey(ctx, p.kv, p.key)
	if err != nil {
		return natsutil.Classify(err)
	}
	p.last.set(nil)

	p.logger.Debug("subscription record deleted", "key", p.key, "existed", existed)

	return nil
}

// Current reads back the stored envelope.
//
// Returns:
//   - Envelope: Stored envelope
//   - bool: false when no record is stored
//   - error: KV or decoding failure
func (p *KV) Current(ctx context.Context) (Envelope, bool, error) {
	entry, err := p.kv.Get(ctx, p.key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return Envelope{}, false, nil
		}

		return Envelope{}, false, natsutil.Classify(err)
	}

	var env Envelope
	if err := json.Unmarshal(entry.Value(), &env); err != nil {
		return Envelope{}, false, fmt.Errorf("decode envelope %s: %w", p.key, err)
	}

	return env, true, nil
}
