package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/capability"
	"github.com/khanhnv2901/reality-check/internal/checker"
	"github.com/khanhnv2901/reality-check/internal/reality"
)

// registerBatchFlags binds the worker pool flags used by multi-domain commands.
func registerBatchFlags(flags *pflag.FlagSet, cfg *CLIConfig) {
	flags.IntVar(&cfg.Batch.Concurrency, "concurrency", cfg.Batch.Concurrency, "Maximum concurrent evaluations")
	flags.IntVar(&cfg.Batch.RateLimit, "batch-rate-limit", cfg.Batch.RateLimit, "Evaluations started per second (0 disables limiting)")
}

// components holds everything built from a CLIConfig.
type components struct {
	resolver   *checker.Resolver
	client     *checker.HTTPChecker
	tls13      *checker.TLS13Checker
	capability *capability.Service
	backend    reality.CapabilityChecker
	evaluator  *reality.Evaluator
	runner     *checker.Runner
	backendURL string
}

// backendLabel names the capability backend the evaluator actually uses.
func (c *components) backendLabel() string {
	if c.backendURL == "" {
		return "local"
	}
	return c.backendURL
}

func buildComponents(cfg *CLIConfig, logger *zap.Logger) (*components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var resolver *checker.Resolver
	if len(cfg.Probe.Nameservers) > 0 {
		r, err := checker.NewResolver(cfg.Probe.Nameservers, 0)
		if err != nil {
			return nil, fmt.Errorf("configure resolver: %w", err)
		}
		resolver = r
	}

	client := &checker.HTTPChecker{
		Timeout:   cfg.Evaluator.Deadline,
		UserAgent: cfg.Probe.UserAgent,
		Resolver:  resolver,
	}
	tls13 := &checker.TLS13Checker{
		StrictTimeout:     cfg.Capability.StrictTimeout,
		DiagnosticTimeout: cfg.Capability.DiagnosticTimeout,
		UserAgent:         cfg.Probe.UserAgent,
		Resolver:          resolver,
	}
	service := capability.NewService(tls13, logger.Named("capability"))

	var backend reality.CapabilityChecker = service
	if cfg.Backend.URL != "" {
		backend = capability.NewClient(capability.ClientConfig{
			BaseURL: cfg.Backend.URL,
			Token:   cfg.Backend.Token,
			Timeout: cfg.Backend.Timeout,
			Logger:  logger.Named("backend"),
		})
	}

	evaluator := reality.NewEvaluator(reality.Config{
		Client:   client,
		Backend:  backend,
		Deadline: cfg.Evaluator.Deadline,
		Logger:   logger.Named("evaluator"),
	})

	return &components{
		resolver:   resolver,
		client:     client,
		tls13:      tls13,
		capability: service,
		backend:    backend,
		evaluator:  evaluator,
		runner: &checker.Runner{
			Concurrency: cfg.Batch.Concurrency,
			RateLimit:   cfg.Batch.RateLimit,
		},
		backendURL: cfg.Backend.URL,
	}, nil
}

// appComponents builds components from the command's resolved config.
func appComponents(appCtx *AppContext) (*components, error) {
	cfg := cliConfig
	logger := zap.NewNop()
	if appCtx != nil {
		if appCtx.Config != nil {
			cfg = appCtx.Config
		}
		if appCtx.Logger != nil {
			logger = appCtx.Logger
		}
	}
	return buildComponents(cfg, logger)
}
