package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/reality"
	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

// CheckRealityPath is the backend route the client calls.
const CheckRealityPath = "/inbound/check-reality"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client asks a remote backend for the TLS 1.3 capability of a host.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client. BaseURL may include a path prefix such as /api/v1.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = consts.DefaultProbeDeadline
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// CheckCapability implements reality.CapabilityChecker.
func (c *Client) CheckCapability(ctx context.Context, host string) (*reality.CapabilityResult, error) {
	body, err := json.Marshal(Request{Domain: host})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CheckRealityPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sharederrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.Warn("capability backend returned non-2xx",
			zap.String("host", host),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", sharederrors.ErrBackendRejected, resp.StatusCode)
	}

	outcome, err := Decode[Response](io.LimitReader(resp.Body, consts.MaxRequestBodyBytes))
	if err != nil {
		c.logger.Warn("capability backend sent malformed body", zap.String("host", host), zap.Error(err))
		return nil, err
	}

	payload, ok := outcome.Value()
	if !ok {
		c.logger.Warn("capability backend rejected check",
			zap.String("host", host),
			zap.String("reason", outcome.Reason()),
		)
		return nil, fmt.Errorf("%w: %s", sharederrors.ErrBackendRejected, outcome.Reason())
	}

	return payload.ToResult(), nil
}
