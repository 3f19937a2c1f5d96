package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arloliu/pushsub/internal/natsutil"
	"github.com/arloliu/pushsub/types"
)

const defaultRequestTimeout = 5 * time.Second

// Request actions.
const (
	ActionPublish   = "publish"
	ActionUnpublish = "unpublish"
)

// RequestMessage is the body of every request sent by a Request publisher.
type RequestMessage struct {
	Action string `json:"action"`
	Envelope
}

// Ack is the reply the owner of record sends back.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// RequestConfig configures a NATS request/reply publisher.
type RequestConfig struct {
	// Subject the owner of record answers on. Required.
	Subject string

	// DeviceID identifies this installation. Required; must stay the same across restarts so
	// unpublish can name a record published by an earlier process.
	DeviceID string

	// Timeout bounds a request whose context has no deadline (default: 5s).
	Timeout time.Duration

	// Logger receives debug output (default: no-op).
	Logger types.Logger
}

// Request publishes records as NATS requests that must be acknowledged.
//
// Unlike KV, a change only counts once the owner of record replied with
// {"ok": true}; a negative acknowledgement is returned as ErrRejected.
type Request struct {
	nc       *nats.Conn
	subject  string
	deviceID string
	timeout  time.Duration
	logger   types.Logger
	last     lastRecord
}

var _ types.RecordPublisher = (*Request)(nil)

// NewRequest creates a request/reply publisher.
//
// Example:
//
//	pub, err := publisher.NewRequest(nc, publisher.RequestConfig{Subject: "push.records", DeviceID: installationID})
func NewRequest(nc *nats.Conn, cfg RequestConfig) (*Request, error) {
	if nc == nil {
		return nil, fmt.Errorf("%w: NATS connection is required", types.ErrPublisherConfig)
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", types.ErrPublisherConfig)
	}
	if err := checkDeviceID(cfg.DeviceID); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Request{
		nc:       nc,
		subject:  cfg.Subject,
		deviceID: cfg.DeviceID,
		timeout:  timeout,
		logger:   defaultLogger(cfg.Logger),
	}, nil
}

// DeviceID returns the device id sent with every request.
func (p *Request) DeviceID() string {
	return p.deviceID
}

// Publish asks the owner of record to store the record.
func (p *Request) Publish(ctx context.Context, record types.SubscriptionRecord) error {
	if err := p.request(ctx, ActionPublish, &record); err != nil {
		return err
	}
	p.last.set(&record)

	return nil
}

// Unpublish asks the owner of record to drop the last published record.
func (p *Request) Unpublish(ctx context.Context) error {
	if err := p.request(ctx, ActionUnpublish, p.last.get()); err != nil {
		return err
	}
	p.last.set(nil)

	return nil
}

func (p *Request) request(ctx context.Context, action string, rec *types.SubscriptionRecord) error {
	data, err := json.Marshal(RequestMessage{Action: action, Envelope: newEnvelope(p.deviceID, rec)})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg, err := p.nc.RequestWithContext(ctx, p.subject, data)
	if err != nil {
		return natsutil.Classify(err)
	}

	var ack Ack
	if err := json.Unmarshal(msg.Data, &ack); err != nil {
		return fmt.Errorf("%w: malformed acknowledgement: %w", ErrRejected, err)
	}
	if !ack.OK {
		return fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}

	p.logger.Debug("record owner acknowledged", "action", action, "subject", p.subject)

	return nil
}
