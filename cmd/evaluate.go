package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanhnv2901/reality-check/internal/checker"
	"github.com/khanhnv2901/reality-check/internal/reality"
)

// domainEvaluator is satisfied by *reality.Evaluator.
type domainEvaluator interface {
	Evaluate(ctx context.Context, candidate string) reality.EvaluationResult
}

type evaluateOptions struct {
	File        string
	Format      string
	FailInvalid bool
	Progress    bool
}

var evalOpts = evaluateOptions{Format: formatText}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [domain[:port]...]",
	Short: "Probe and score domains as REALITY camouflage targets",
	Long: `Run the full evaluation for each domain: a client-side reachability probe
and a TLS 1.3 capability check run concurrently under a shared deadline, and
their results are combined with offline risk heuristics into a 0-100 score.

Domains come from the arguments and/or --file (one per line, # comments allowed).`,
	Example: `  reality-check evaluate www.microsoft.com
  reality-check evaluate --format json dl.google.com:443 www.apple.com
  reality-check evaluate --file candidates.txt --concurrency 8 --fail-invalid`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		comps, err := appComponents(appCtx)
		if err != nil {
			return err
		}

		candidates, err := collectCandidates(args, evalOpts.File)
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		if appCtx != nil && appCtx.Logger != nil {
			logger = appCtx.Logger
		}
		logger.Debug("evaluating candidates",
			zap.Int("count", len(candidates)),
			zap.Duration("deadline", comps.evaluator.Deadline()),
		)

		return runEvaluate(commandContext(cmd), evalOpts, comps.evaluator, comps.runner, candidates,
			cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// collectCandidates merges positional arguments with the lines of file.
func collectCandidates(args []string, file string) ([]string, error) {
	candidates := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			candidates = append(candidates, arg)
		}
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open domain list: %w", err)
		}
		defer f.Close()
		fromFile, err := readCandidates(f)
		if err != nil {
			return nil, fmt.Errorf("read domain list %s: %w", file, err)
		}
		candidates = append(candidates, fromFile...)
	}

	if len(candidates) == 0 {
		return nil, &InvalidCandidateError{}
	}
	return candidates, nil
}

func readCandidates(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// runEvaluate evaluates every candidate through runner, writes the results in
// input order and, with FailInvalid, reports unsuitable domains as an error.
func runEvaluate(ctx context.Context, opts evaluateOptions, evaluator domainEvaluator, runner *checker.Runner,
	candidates []string, out, errOut io.Writer) error {
	if !validFormat(opts.Format) {
		return fmt.Errorf("unsupported output format %q (use text, json or yaml)", opts.Format)
	}
	if runner == nil {
		runner = &checker.Runner{Concurrency: defaultBatchConcurrency}
	}

	var progress *progressPrinter
	if opts.Progress && len(candidates) > 1 {
		progress = newProgressPrinter(errOut, len(candidates), "evaluate")
		progress.Start()
	}

	records := make([]evaluationRecord, len(candidates))
	runner.Each(ctx, len(candidates), func(ctx context.Context, i int) {
		start := time.Now()
		res := evaluator.Evaluate(ctx, candidates[i])
		records[i] = evaluationRecord{Domain: candidates[i], Result: res}
		if progress != nil {
			progress.Increment(res.IsValid, time.Since(start).Seconds())
		}
	})

	if progress != nil {
		progress.Stop()
	}

	if err := writeRecords(out, opts.Format, records); err != nil {
		return err
	}

	if !opts.FailInvalid {
		return nil
	}
	var rejected []string
	for _, rec := range records {
		if !rec.Result.IsValid {
			rejected = append(rejected, rec.Domain)
		}
	}
	if len(rejected) > 0 {
		return &UnsuitableDomainError{Domains: rejected}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evalOpts.File, "file", "f", "", "Read domains from file, one per line")
	evaluateCmd.Flags().StringVarP(&evalOpts.Format, "format", "o", evalOpts.Format, "Output format: text, json or yaml")
	evaluateCmd.Flags().BoolVar(&evalOpts.FailInvalid, "fail-invalid", false, "Exit with status 2 when any domain is unsuitable")
	evaluateCmd.Flags().BoolVar(&evalOpts.Progress, "progress", false, "Show progress on stderr while evaluating several domains")
	registerBatchFlags(evaluateCmd.Flags(), cliConfig)
}
