package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
)

// Key exchange labels reported when the strict handshake fails.
const (
	KeyExchangeUnsupported = "Unsupported"
	KeyExchangeNone        = "None"

	defaultKeyExchange = "X25519"
)

// CapabilityReport is what the authoritative TLS 1.3 probe learned about a host.
type CapabilityReport struct {
	Host        string        `json:"host"`
	HasTLS13    bool          `json:"has_tls13"`
	Reachable   bool          `json:"reachable"`
	KeyExchange string        `json:"key_exchange"`
	Latency     time.Duration `json:"latency"`
	Message     string        `json:"message"`
}

// LatencyMillis returns the strict handshake time in whole milliseconds.
func (r CapabilityReport) LatencyMillis() int64 {
	return r.Latency.Milliseconds()
}

// TLS13Checker verifies that a host completes a TLS 1.3-only handshake, the
// property a REALITY dest must have. Certificates are not verified: the
// question is protocol support, not trust.
type TLS13Checker struct {
	StrictTimeout     time.Duration
	DiagnosticTimeout time.Duration
	UserAgent         string
	Resolver          *Resolver
}

// Assess runs the strict probe and, when it fails, a diagnostic probe that
// tells an old TLS stack apart from an unreachable host.
func (c *TLS13Checker) Assess(ctx context.Context, target string) CapabilityReport {
	host := ExtractHost(target)
	report := CapabilityReport{Host: host}

	strict := &HTTPChecker{
		Timeout:   durationOr(c.StrictTimeout, consts.StrictProbeTimeout),
		UserAgent: c.UserAgent,
		Resolver:  c.Resolver,
		TLSConfig: &tls.Config{
			MinVersion:         tls.VersionTLS13,
			MaxVersion:         tls.VersionTLS13,
			CurvePreferences:   []tls.CurveID{tls.X25519, tls.CurveP256},
			InsecureSkipVerify: true,
		},
	}

	start := time.Now()
	res, strictErr := strict.head(ctx, target)
	report.Latency = time.Since(start)

	if strictErr == nil {
		kex := res.KeyExchange
		if kex == "" {
			kex = defaultKeyExchange
		}
		report.HasTLS13 = true
		report.Reachable = true
		report.KeyExchange = kex
		report.Message = fmt.Sprintf("Target supports TLS 1.3 and %s key exchange", kex)
		return report
	}

	diagnostic := &HTTPChecker{
		Timeout:   durationOr(c.DiagnosticTimeout, consts.DiagnosticProbeTimeout),
		UserAgent: c.UserAgent,
		Resolver:  c.Resolver,
		TLSConfig: &tls.Config{
			MinVersion:         tls.VersionTLS10,
			InsecureSkipVerify: true,
		},
	}
	if _, diagErr := diagnostic.head(ctx, target); diagErr == nil {
		report.Reachable = true
		report.KeyExchange = KeyExchangeUnsupported
		report.Message = "Target does not support TLS 1.3 (only supports 1.2 or lower)"
		return report
	}

	report.KeyExchange = KeyExchangeNone
	report.Message = fmt.Sprintf("Server failed to connect to target: %s (please check network quality)", failureReason(strictErr))
	return report
}

// Check implements Checker so the probe can run through a Runner.
func (c *TLS13Checker) Check(ctx context.Context, target string) CheckResult {
	report := c.Assess(ctx, target)
	result := CheckResult{
		Target:       target,
		CheckedAt:    time.Now().UTC(),
		Status:       StatusOK,
		KeyExchange:  report.KeyExchange,
		ResponseTime: float64(report.Latency.Microseconds()) / 1000,
		Notes:        report.Message,
	}
	if report.HasTLS13 {
		result.TLSVersion = tlsVersionString(tls.VersionTLS13)
	}
	if !report.Reachable {
		result.Status = StatusError
		result.Error = report.Message
	}
	return result
}

// Name returns the name of this checker
func (c *TLS13Checker) Name() string {
	return "check tls13"
}

func failureReason(err error) string {
	if isTimeout(err) {
		return "Request timeout"
	}
	return "Connection reset"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
