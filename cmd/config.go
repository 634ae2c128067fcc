package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	consts "github.com/khanhnv2901/reality-check/internal/shared/constants"
)

const (
	defaultBatchConcurrency = 4
	defaultBatchRateLimit   = 5
	defaultBackendTimeout   = consts.DefaultProbeDeadline
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Evaluator  EvaluatorConfig
	Backend    BackendConfig
	Probe      ProbeConfig
	Capability CapabilityConfig
	Batch      BatchConfig
}

// EvaluatorConfig controls the full evaluation.
type EvaluatorConfig struct {
	Deadline time.Duration
}

// BackendConfig points the evaluator at a remote capability backend. An empty
// URL means the capability check runs in-process.
type BackendConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// ProbeConfig groups options shared by every outbound probe.
type ProbeConfig struct {
	Nameservers []string
	UserAgent   string
}

// CapabilityConfig tunes the in-process TLS 1.3 capability check.
type CapabilityConfig struct {
	StrictTimeout     time.Duration
	DiagnosticTimeout time.Duration
}

// BatchConfig bounds multi-domain evaluations.
type BatchConfig struct {
	Concurrency int
	RateLimit   int
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Evaluator: EvaluatorConfig{
			Deadline: consts.DefaultProbeDeadline,
		},
		Backend: BackendConfig{
			Timeout: defaultBackendTimeout,
		},
		Probe: ProbeConfig{
			Nameservers: []string{},
			UserAgent:   consts.DefaultUserAgent,
		},
		Capability: CapabilityConfig{
			StrictTimeout:     consts.StrictProbeTimeout,
			DiagnosticTimeout: consts.DiagnosticProbeTimeout,
		},
		Batch: BatchConfig{
			Concurrency: defaultBatchConcurrency,
			RateLimit:   defaultBatchRateLimit,
		},
	}
}

// registerProbeFlags binds the flags every network-using command shares.
func registerProbeFlags(flags *pflag.FlagSet, cfg *CLIConfig) {
	flags.DurationVar(&cfg.Evaluator.Deadline, "deadline", cfg.Evaluator.Deadline, "Shared deadline for both probes of a full evaluation")
	flags.StringVar(&cfg.Backend.URL, "backend-url", cfg.Backend.URL, "Base URL of a remote capability backend (empty runs the check locally)")
	flags.StringVar(&cfg.Backend.Token, "backend-token", cfg.Backend.Token, "Bearer token sent to the capability backend")
	flags.DurationVar(&cfg.Backend.Timeout, "backend-timeout", cfg.Backend.Timeout, "HTTP timeout for capability backend requests")
	flags.StringSliceVar(&cfg.Probe.Nameservers, "nameserver", cfg.Probe.Nameservers, "Custom DNS nameservers (repeatable, default uses system resolver)")
	flags.StringVar(&cfg.Probe.UserAgent, "user-agent", cfg.Probe.UserAgent, "User-Agent sent by probe requests")
}

// applyConfigDefaults merges config file and environment values into the
// runtime config when the user did not explicitly set the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()

	applyDurationDefault(flags, "deadline", "evaluator.deadline", func(v time.Duration) {
		cliConfig.Evaluator.Deadline = v
	})
	applyStringDefault(flags, "backend-url", "backend.url", func(v string) {
		cliConfig.Backend.URL = v
	})
	applyStringDefault(flags, "backend-token", "backend.token", func(v string) {
		cliConfig.Backend.Token = v
	})
	applyDurationDefault(flags, "backend-timeout", "backend.timeout", func(v time.Duration) {
		cliConfig.Backend.Timeout = v
	})
	applyStringSliceDefault(flags, "nameserver", "probe.nameservers", func(v []string) {
		cliConfig.Probe.Nameservers = v
	})
	applyStringDefault(flags, "user-agent", "probe.user_agent", func(v string) {
		cliConfig.Probe.UserAgent = v
	})

	// Not exposed as flags.
	if viper.IsSet("capability.strict_timeout") {
		cliConfig.Capability.StrictTimeout = viper.GetDuration("capability.strict_timeout")
	}
	if viper.IsSet("capability.diagnostic_timeout") {
		cliConfig.Capability.DiagnosticTimeout = viper.GetDuration("capability.diagnostic_timeout")
	}

	applyIntDefault(flags, "concurrency", "batch.concurrency", func(v int) {
		cliConfig.Batch.Concurrency = v
	})
	applyIntDefault(flags, "batch-rate-limit", "batch.rate_limit", func(v int) {
		cliConfig.Batch.RateLimit = v
	})
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	flag := flags.Lookup(name)
	return flag != nil && flag.Changed
}

func applyIntDefault(flags *pflag.FlagSet, name, key string, setter func(int)) {
	if setter == nil || !viper.IsSet(key) || flagChanged(flags, name) {
		return
	}
	setter(viper.GetInt(key))
}

func applyDurationDefault(flags *pflag.FlagSet, name, key string, setter func(time.Duration)) {
	if setter == nil || !viper.IsSet(key) || flagChanged(flags, name) {
		return
	}
	if d := viper.GetDuration(key); d > 0 {
		setter(d)
	}
}

func applyStringDefault(flags *pflag.FlagSet, name, key string, setter func(string)) {
	if setter == nil || !viper.IsSet(key) || flagChanged(flags, name) {
		return
	}
	setter(viper.GetString(key))
}

func applyStringSliceDefault(flags *pflag.FlagSet, name, key string, setter func([]string)) {
	if setter == nil || !viper.IsSet(key) || flagChanged(flags, name) {
		return
	}
	setter(viper.GetStringSlice(key))
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
