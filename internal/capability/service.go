package capability

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/checker"
	"github.com/khanhnv2901/reality-check/internal/reality"
	sharederrors "github.com/khanhnv2901/reality-check/internal/shared/errors"
)

// Prober runs the authoritative TLS 1.3 probe. *checker.TLS13Checker satisfies it.
type Prober interface {
	Assess(ctx context.Context, target string) checker.CapabilityReport
}

// Service answers capability checks in-process. It backs the
// /inbound/check-reality route and stands in for a remote backend when none
// is configured.
type Service struct {
	prober Prober
	logger *zap.Logger
}

// NewService creates a Service around prober.
func NewService(prober Prober, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{prober: prober, logger: logger}
}

// Check validates domain and probes it.
func (s *Service) Check(ctx context.Context, domain string) (Response, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return Response{}, sharederrors.ErrEmptyDomain
	}
	host := reality.ParseCandidate(domain).Host
	if !reality.ValidFormat(host) {
		return Response{}, fmt.Errorf("%w: %q", sharederrors.ErrInvalidDomain, domain)
	}

	report := s.prober.Assess(ctx, domain)
	s.logger.Info("capability probe finished",
		zap.String("host", host),
		zap.Bool("tls13", report.HasTLS13),
		zap.String("key_exchange", report.KeyExchange),
		zap.Duration("latency", report.Latency),
	)
	return FromReport(report), nil
}

// CheckCapability implements reality.CapabilityChecker.
func (s *Service) CheckCapability(ctx context.Context, host string) (*reality.CapabilityResult, error) {
	resp, err := s.Check(ctx, host)
	if err != nil {
		return nil, err
	}
	return resp.ToResult(), nil
}
