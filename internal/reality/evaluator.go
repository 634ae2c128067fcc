package reality

import (
	"context"
	"time"

	"go.uber.org/zap"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
)

// ClientProber performs the caller-side reachability check.
type ClientProber interface {
	Probe(ctx context.Context, host string) (*ProbeResult, error)
}

// CapabilityChecker asks the trusted backend for the TLS 1.3 capability of host.
type CapabilityChecker interface {
	CheckCapability(ctx context.Context, host string) (*CapabilityResult, error)
}

// Config wires an Evaluator. Either prober may be nil; a nil prober never
// produces a result. A zero Deadline means consts.DefaultProbeDeadline.
type Config struct {
	Client   ClientProber
	Backend  CapabilityChecker
	Deadline time.Duration
	Logger   *zap.Logger
}

// Evaluator runs the full, network-using evaluation. It holds no per-call state
// and is safe for concurrent use.
type Evaluator struct {
	client   ClientProber
	backend  CapabilityChecker
	deadline time.Duration
	logger   *zap.Logger
}

// NewEvaluator creates an Evaluator from cfg.
func NewEvaluator(cfg Config) *Evaluator {
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = consts.DefaultProbeDeadline
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		client:   cfg.Client,
		backend:  cfg.Backend,
		deadline: deadline,
		logger:   logger,
	}
}

// Deadline returns the shared probe deadline.
func (e *Evaluator) Deadline() time.Duration {
	return e.deadline
}

// Evaluate scores candidate as a REALITY camouflage target. It never returns an
// error: every failure mode is reported through the result.
func (e *Evaluator) Evaluate(ctx context.Context, candidate string) (result EvaluationResult) {
	c := ParseCandidate(candidate)
	if !ValidFormat(c.Host) {
		return EvaluationResult{IsValid: false, Message: MsgInvalidFormat}
	}

	host := c.Host
	risk := AssessRisk(host)
	logger := e.logger.With(zap.String("host", host))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("evaluation aborted", zap.Any("panic", r))
			result = communicationError(risk)
		}
	}()

	start := time.Now()
	client, backend := e.probe(ctx, host, logger)
	if client == nil && backend == nil {
		logger.Info("no probe produced a result", zap.Duration("elapsed", time.Since(start)))
		return communicationError(risk)
	}

	result = Synthesize(Inputs{
		Risk:    risk,
		Premium: IsPremium(host),
		Client:  client,
		Backend: backend,
	})
	logger.Info("domain evaluated",
		zap.Int("score", result.ScoreValue()),
		zap.Bool("valid", result.IsValid),
		zap.Bool("client_probe", client != nil),
		zap.Bool("backend_probe", backend != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}

// probe runs both probes concurrently and joins them under the shared deadline.
// Whatever has not arrived when the deadline fires is reported as nil.
func (e *Evaluator) probe(ctx context.Context, host string, logger *zap.Logger) (*ProbeResult, *CapabilityResult) {
	ctx, cancel := context.WithTimeout(ctx, e.deadline)
	defer cancel()

	// Buffered so an abandoned probe can still deliver and exit.
	clientCh := make(chan *ProbeResult, 1)
	backendCh := make(chan *CapabilityResult, 1)

	go func() {
		clientCh <- e.runClientProbe(ctx, host, logger)
	}()
	go func() {
		backendCh <- e.runCapabilityCheck(ctx, host, logger)
	}()

	var (
		client      *ProbeResult
		backend     *CapabilityResult
		clientDone  bool
		backendDone bool
	)
	for !clientDone || !backendDone {
		select {
		case client = <-clientCh:
			clientDone = true
		case backend = <-backendCh:
			backendDone = true
		case <-ctx.Done():
			logger.Debug("probe deadline reached",
				zap.Bool("client_done", clientDone),
				zap.Bool("backend_done", backendDone),
				zap.Error(ctx.Err()),
			)
			return client, backend
		}
	}
	return client, backend
}

func (e *Evaluator) runClientProbe(ctx context.Context, host string, logger *zap.Logger) (res *ProbeResult) {
	if e.client == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("client probe panicked", zap.Any("panic", r))
			res = nil
		}
	}()
	res, err := e.client.Probe(ctx, host)
	if err != nil {
		logger.Debug("client probe failed", zap.Error(err))
		return nil
	}
	return res
}

func (e *Evaluator) runCapabilityCheck(ctx context.Context, host string, logger *zap.Logger) (res *CapabilityResult) {
	if e.backend == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("capability check panicked", zap.Any("panic", r))
			res = nil
		}
	}()
	res, err := e.backend.CheckCapability(ctx, host)
	if err != nil {
		logger.Debug("capability check failed", zap.Error(err))
		return nil
	}
	return res
}

// QuickCheck is the offline variant: format and risk only, never blocks.
func QuickCheck(candidate string) EvaluationResult {
	c := ParseCandidate(candidate)
	if !ValidFormat(c.Host) {
		return EvaluationResult{IsValid: false, Message: MsgFormatError}
	}
	risk := AssessRisk(c.Host)
	msg := MsgQuickOK
	if risk.IsRisk {
		msg = MsgQuickRisk
	}
	return EvaluationResult{
		IsValid: !risk.IsRisk,
		Message: msg,
		Warning: risk.Reason,
	}
}
