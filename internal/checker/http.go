package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/khanhnv2901/reality-check/internal/reality"
	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

// HTTPChecker sends a single HEAD request to https://<host> and reports whether
// any response came back. It is the client-side reachability probe.
type HTTPChecker struct {
	Timeout   time.Duration
	UserAgent string
	// Resolver, when set, replaces the system resolver for dialing.
	Resolver *Resolver
	// TLSConfig overrides the default client TLS settings.
	TLSConfig *tls.Config
}

func (h *HTTPChecker) newClient() *http.Client {
	dialer := &net.Dialer{Timeout: h.Timeout, KeepAlive: -1}

	tlsConfig := h.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	transport := &http.Transport{
		TLSClientConfig:     tlsConfig.Clone(),
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: h.Timeout,
		DisableKeepAlives:   true,
	}
	if h.Resolver != nil {
		transport.DialContext = h.Resolver.DialContext(dialer)
	}
	// Negotiate h2 over ALPN so the recorded protocol reflects what the target offers.
	_ = http2.ConfigureTransport(transport)

	return &http.Client{
		Timeout:   h.Timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Check performs a HEAD request against the target
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	result, _ := h.head(ctx, target)
	return result
}

// head is Check with the transport error kept for callers that classify it.
func (h *HTTPChecker) head(ctx context.Context, target string) (CheckResult, error) {
	result := CheckResult{
		Target:    target,
		CheckedAt: time.Now().UTC(),
	}

	info := ParseTarget(target)
	client := h.newClient()
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, info.URL, nil)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("create request: %v", err)
		return result, err
	}
	userAgent := h.UserAgent
	if userAgent == "" {
		userAgent = consts.DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := client.Do(req)
	result.ResponseTime = elapsedMillis(start)
	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		return result, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.Status = StatusOK
	result.HTTPStatus = resp.StatusCode
	result.Protocol = resp.Proto

	if resp.TLS != nil {
		result.TLSVersion = tlsVersionString(resp.TLS.Version)
		result.KeyExchange = curveName(resp.TLS.CurveID)
	}

	return result, nil
}

// Name returns the name of this checker
func (h *HTTPChecker) Name() string {
	return "check http"
}

// Probe adapts Check to the evaluator's client probe. Any HTTP response, of
// any status, counts as reachable.
func (h *HTTPChecker) Probe(ctx context.Context, host string) (*reality.ProbeResult, error) {
	res := h.Check(ctx, host)
	if !res.OK() {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", sharederrors.ErrProbeTimeout, res.Error)
		}
		return nil, fmt.Errorf("%w: %s", sharederrors.ErrTargetUnreachable, res.Error)
	}
	return &reality.ProbeResult{
		Reachable:     true,
		ElapsedMillis: int64(res.ResponseTime),
		Protocol:      res.Protocol,
	}, nil
}
