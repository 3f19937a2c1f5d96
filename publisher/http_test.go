package publisher

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/pushsub/types"
)

const testEndpoint = "https://api.example.com/push/subscriptions"

func newMockedHTTP(t *testing.T, cfg HTTPConfig) *HTTP {
	t.Helper()

	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	cfg.Client = client
	if cfg.URL == "" {
		cfg.URL = testEndpoint
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = "device-test"
	}

	p, err := NewHTTP(cfg)
	require.NoError(t, err)

	return p
}

func testRecord() types.SubscriptionRecord {
	return types.SubscriptionRecord{
		Endpoint: "https://push.example/wpush/v2/abc",
		Keys:     types.SubscriptionKeys{P256DH: "BPub", Auth: "c2VjcmV0"},
	}
}

func decodeEnvelope(t *testing.T, req *http.Request) Envelope {
	t.Helper()

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env))

	return env
}

func TestNewHTTP_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"relative", "/push"},
		{"ftp scheme", "ftp://example.com/push"},
		{"unparsable", "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTP(HTTPConfig{URL: tt.url, DeviceID: "device-1"})
			require.ErrorIs(t, err, types.ErrPublisherConfig)
		})
	}

	t.Run("missing device id", func(t *testing.T) {
		_, err := NewHTTP(HTTPConfig{URL: testEndpoint})
		require.ErrorIs(t, err, types.ErrPublisherConfig)
		require.Contains(t, err.Error(), "DeviceID")
	})

	p, err := NewHTTP(HTTPConfig{URL: testEndpoint, DeviceID: "device-1"})
	require.NoError(t, err)
	require.Equal(t, "device-1", p.DeviceID())
}

func TestHTTP_Publish(t *testing.T) {
	p := newMockedHTTP(t, HTTPConfig{
		DeviceID:    "device-1",
		BearerToken: "secret-token",
		Headers:     map[string]string{"X-Tenant": "acme"},
	})

	var got Envelope
	httpmock.RegisterResponder(http.MethodPost, testEndpoint, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
		assert.Equal(t, "acme", req.Header.Get("X-Tenant"))
		got = decodeEnvelope(t, req)

		return httpmock.NewStringResponse(http.StatusCreated, `{}`), nil
	})

	rec := testRecord()
	require.NoError(t, p.Publish(t.Context(), rec))

	require.Equal(t, "device-1", got.DeviceID)
	require.NotNil(t, got.Subscription)
	require.Equal(t, rec, *got.Subscription)
	require.False(t, got.PublishedAt.IsZero())
	require.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestHTTP_PublishRejected(t *testing.T) {
	p := newMockedHTTP(t, HTTPConfig{})

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusUnprocessableEntity, `{"error":"unknown push service"}`))

	err := p.Publish(t.Context(), testRecord())
	require.ErrorIs(t, err, ErrRejected)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	require.Contains(t, se.Body, "unknown push service")

	// A failed publish leaves nothing to name on unpublish
	require.Nil(t, p.last.get())
}

func TestHTTP_PublishTransportError(t *testing.T) {
	p := newMockedHTTP(t, HTTPConfig{})

	httpmock.RegisterResponder(http.MethodPost, testEndpoint, httpmock.NewErrorResponder(io.ErrUnexpectedEOF))

	err := p.Publish(t.Context(), testRecord())
	require.ErrorIs(t, err, types.ErrConnectivity)
	require.NotErrorIs(t, err, ErrRejected)
}

func TestHTTP_UnpublishSendsLastRecord(t *testing.T) {
	p := newMockedHTTP(t, HTTPConfig{DeviceID: "device-1"})

	httpmock.RegisterResponder(http.MethodPost, testEndpoint, httpmock.NewStringResponder(http.StatusOK, ""))

	var got Envelope
	httpmock.RegisterResponder(http.MethodDelete, testEndpoint, func(req *http.Request) (*http.Response, error) {
		got = decodeEnvelope(t, req)
		return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
	})

	rec := testRecord()
	require.NoError(t, p.Publish(t.Context(), rec))
	require.NoError(t, p.Unpublish(t.Context()))

	require.Equal(t, "device-1", got.DeviceID)
	require.NotNil(t, got.Subscription)
	require.Equal(t, rec.Endpoint, got.Subscription.Endpoint)

	// Second unpublish has no record to name
	require.NoError(t, p.Unpublish(t.Context()))
	require.Nil(t, got.Subscription)
}

func TestHTTP_UnpublishStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"not found is success", http.StatusNotFound, false},
		{"gone is success", http.StatusGone, false},
		{"server error fails", http.StatusServiceUnavailable, true},
		{"forbidden fails", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMockedHTTP(t, HTTPConfig{})
			httpmock.RegisterResponder(http.MethodDelete, testEndpoint, httpmock.NewStringResponder(tt.status, "nope"))

			err := p.Unpublish(t.Context())
			if tt.wantErr {
				require.ErrorIs(t, err, ErrRejected)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
