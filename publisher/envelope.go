package publisher

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/pushsub/internal/logger"
	"github.com/arloliu/pushsub/types"
)

// ErrRejected indicates that the owner of record refused the change.
var ErrRejected = errors.New("record owner rejected the change")

// Envelope is the payload every network publisher sends.
type Envelope struct {
	// DeviceID identifies this installation to the owner of record.
	DeviceID string `json:"deviceId"`

	// Subscription is the record being published. On unpublish it carries the
	// last record this publisher published, or is omitted when there was none.
	Subscription *types.SubscriptionRecord `json:"subscription,omitempty"`

	// PublishedAt is when the envelope was created (UTC).
	PublishedAt time.Time `json:"publishedAt"`
}

// lastRecord remembers the most recently published record so unpublish can
// name what it removes.
type lastRecord struct {
	mu     sync.Mutex
	record *types.SubscriptionRecord
}

func (l *lastRecord) set(rec *types.SubscriptionRecord) {
	l.mu.Lock()
	l.record = rec
	l.mu.Unlock()
}

func (l *lastRecord) get() *types.SubscriptionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.record
}

func newEnvelope(deviceID string, rec *types.SubscriptionRecord) Envelope {
	return Envelope{DeviceID: deviceID, Subscription: rec, PublishedAt: time.Now().UTC()}
}

// checkDeviceID rejects an empty device id. An unpublish issued by a later
// process only reaches the record through the same id.
func checkDeviceID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: DeviceID is required", types.ErrPublisherConfig)
	}

	return nil
}

func defaultLogger(l types.Logger) types.Logger {
	if l == nil {
		return logger.NewNop()
	}

	return l
}
