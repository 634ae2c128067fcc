package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/checker"
)

type probeOptions struct {
	TLS13    bool
	JSON     bool
	Progress bool
}

var probeOpts probeOptions

var probeCmd = &cobra.Command{
	Use:   "probe [domain[:port]...]",
	Short: "Run a single raw probe against domains and show what it observed",
	Long: `Run one probe on its own instead of the full evaluation. By default this is
the client-side HEAD request; --tls13 runs the capability handshake instead.
The output shows protocol, TLS version and key exchange per target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		comps, err := appComponents(appCtx)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		targets, err := collectCandidates(args, file)
		if err != nil {
			return err
		}

		var probe checker.Checker = comps.client
		if probeOpts.TLS13 {
			probe = comps.tls13
		}

		logger := zap.NewNop()
		if appCtx != nil && appCtx.Logger != nil {
			logger = appCtx.Logger
		}
		return runProbe(commandContext(cmd), probeOpts, comps.runner, probe, targets, logger,
			cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func runProbe(ctx context.Context, opts probeOptions, runner *checker.Runner, probe checker.Checker,
	targets []string, logger *zap.Logger, out, errOut io.Writer) error {
	if runner == nil {
		runner = &checker.Runner{Concurrency: defaultBatchConcurrency}
	}

	var progress *progressPrinter
	if opts.Progress && len(targets) > 1 {
		progress = newProgressPrinter(errOut, len(targets), probe.Name())
		progress.Start()
	}

	audit := func(target string, result checker.CheckResult, duration float64) error {
		logger.Debug("probe finished",
			zap.String("checker", probe.Name()),
			zap.String("target", target),
			zap.String("status", result.Status),
			zap.Float64("duration_s", duration),
		)
		if progress != nil {
			progress.Increment(result.OK(), duration)
		}
		return nil
	}

	results := runner.RunChecks(ctx, targets, probe, audit)
	if progress != nil {
		progress.Stop()
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tSTATUS\tPROTOCOL\tTLS\tKEY EXCHANGE\tTIME\tNOTES")
	for _, r := range results {
		notes := r.Notes
		if r.Error != "" {
			notes = r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0fms\t%s\n",
			r.Target, formatStatusWithColor(r.Status), dash(r.Protocol), dash(r.TLSVersion),
			dash(r.KeyExchange), r.ResponseTime, notes)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringP("file", "f", "", "Read domains from file, one per line")
	probeCmd.Flags().BoolVar(&probeOpts.TLS13, "tls13", false, "Run the TLS 1.3 capability handshake instead of the HEAD probe")
	probeCmd.Flags().BoolVar(&probeOpts.JSON, "json", false, "Print raw check results as JSON")
	probeCmd.Flags().BoolVar(&probeOpts.Progress, "progress", false, "Show progress on stderr while probing several domains")
	registerBatchFlags(probeCmd.Flags(), cliConfig)
}
