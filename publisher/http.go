package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/arloliu/pushsub/types"
)

const (
	defaultHTTPTimeout = 10 * time.Second

	// maxErrorBodySize limits how much of an error response is kept.
	maxErrorBodySize = 1024

	userAgent = "pushsub/1.0"
)

// StatusError is returned when the owner of record answers with a non-2xx status.
type StatusError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Method, e.StatusCode, e.Body)
}

// Unwrap classifies every status error as a rejection.
func (e *StatusError) Unwrap() error {
	return ErrRejected
}

// HTTPConfig configures an HTTP publisher.
type HTTPConfig struct {
	// URL receives POST on publish and DELETE on unpublish. Required.
	URL string

	// DeviceID identifies this installation. Required; must stay the same across restarts so
	// unpublish can name a record published by an earlier process.
	DeviceID string

	// BearerToken is sent as "Authorization: Bearer <token>" when set.
	BearerToken string

	// Headers are added to every request.
	Headers map[string]string

	// Timeout bounds each request when Client is nil (default: 10s).
	Timeout time.Duration

	// Client overrides the HTTP client.
	Client *http.Client

	// Logger receives debug output (default: no-op).
	Logger types.Logger
}

// HTTP publishes subscription records to an HTTP endpoint as JSON envelopes.
type HTTP struct {
	url      string
	deviceID string
	token    string
	headers  map[string]string
	client   *http.Client
	logger   types.Logger
	last     lastRecord
}

var _ types.RecordPublisher = (*HTTP)(nil)

// NewHTTP creates an HTTP publisher.
//
// Parameters:
//   - cfg: Publisher configuration
//
// Returns:
//   - *HTTP: Publisher instance
//   - error: types.ErrPublisherConfig if the URL is missing or not absolute http(s),
//     or DeviceID is empty
//
// Example:
//
//	pub, err := publisher.NewHTTP(publisher.HTTPConfig{
//	    URL:         "https://api.example.com/push/subscriptions",
//	    DeviceID:    installationID,
//	    BearerToken: os.Getenv("API_TOKEN"),
//	})
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || cfg.URL == "" {
		return nil, fmt.Errorf("%w: invalid URL %q", types.ErrPublisherConfig, cfg.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: URL scheme must be http or https, got %q", types.ErrPublisherConfig, u.Scheme)
	}
	if err := checkDeviceID(cfg.DeviceID); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTP{
		url:      cfg.URL,
		deviceID: cfg.DeviceID,
		token:    cfg.BearerToken,
		headers:  cfg.Headers,
		client:   client,
		logger:   defaultLogger(cfg.Logger),
	}, nil
}

// DeviceID returns the device id sent with every envelope.
func (p *HTTP) DeviceID() string {
	return p.deviceID
}

// Publish POSTs the record.
func (p *HTTP) Publish(ctx context.Context, record types.SubscriptionRecord) error {
	if err := p.send(ctx, http.MethodPost, newEnvelope(p.deviceID, &record)); err != nil {
		return err
	}
	p.last.set(&record)

	return nil
}

// Unpublish DELETEs the last published record. A 404 or 410 answer means the
// owner already forgot the record and counts as success.
func (p *HTTP) Unpublish(ctx context.Context) error {
	err := p.send(ctx, http.MethodDelete, newEnvelope(p.deviceID, p.last.get()))
	var se *StatusError
	if errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone) {
		p.logger.Debug("subscription record already absent", "status", se.StatusCode)
		err = nil
	}
	if err != nil {
		return err
	}
	p.last.set(nil)

	return nil
}

func (p *HTTP) send(ctx context.Context, method string, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", types.ErrConnectivity, method, p.url, err)
	}
	defer resp.Body.Close()

	p.logger.Debug("record owner responded",
		"method", method,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{Method: method, StatusCode: resp.StatusCode, Body: string(body)}
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))

	return nil
}
