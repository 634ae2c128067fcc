package capability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

func TestClientCheckCapability(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(Ok(Response{
			IsValid:     true,
			HasTLS13:    true,
			KeyExchange: "X25519",
			Latency:     87,
			Message:     "Target supports TLS 1.3 and X25519 key exchange",
		}, ""))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/api/v1/", Token: "secret", Logger: zaptest.NewLogger(t)})
	res, err := client.CheckCapability(context.Background(), "www.microsoft.com")

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/api/v1/inbound/check-reality", gotPath)
	assert.Equal(t, "www.microsoft.com", gotReq.Domain)
	assert.True(t, res.HasTLS13)
	assert.True(t, res.OK)
	assert.Equal(t, int64(87), res.LatencyMillis)
	assert.Equal(t, "X25519", res.KeyExchange)
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "rejected envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(Fail[Response]("unauthorized"))
			},
			wantErr: sharederrors.ErrBackendRejected,
		},
		{
			name: "missing obj",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":true,"msg":""}`))
			},
			wantErr: sharederrors.ErrBackendRejected,
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantErr: sharederrors.ErrMalformedEnvelope,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantErr: sharederrors.ErrBackendRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: zaptest.NewLogger(t)})
			res, err := client.CheckCapability(context.Background(), "www.apple.com")

			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
		})
	}
}

func TestClientUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(ClientConfig{BaseURL: url, Timeout: time.Second})
	_, err := client.CheckCapability(context.Background(), "www.apple.com")
	assert.True(t, errors.Is(err, sharederrors.ErrBackendUnavailable))
}

func TestClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).CheckCapability(ctx, "www.apple.com")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
