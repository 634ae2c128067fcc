package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/reality-check/internal/reality"
)

var quickFormat = formatText

var quickCmd = &cobra.Command{
	Use:   "quick [domain[:port]...]",
	Short: "Offline format and risk check, no network access",
	Long: `Check domain format and the built-in risk heuristics without contacting
anything. Use it to pre-filter a candidate list before a full evaluation.`,
	Example: `  reality-check quick www.microsoft.com mybank.com
  reality-check quick --format json -f candidates.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		candidates, err := collectCandidates(args, file)
		if err != nil {
			return err
		}
		return runQuick(cmd.OutOrStdout(), quickFormat, candidates)
	},
}

func runQuick(out io.Writer, format string, candidates []string) error {
	if !validFormat(format) {
		return fmt.Errorf("unsupported output format %q (use text, json or yaml)", format)
	}

	records := make([]evaluationRecord, len(candidates))
	for i, c := range candidates {
		records[i] = evaluationRecord{Domain: c, Result: reality.QuickCheck(c)}
	}

	if format != formatText {
		return writeRecords(out, format, records)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tSTATUS\tWARNING")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.Domain, formatStatusWithColor(rec.Result.Message), rec.Result.Warning)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(quickCmd)

	quickCmd.Flags().StringP("file", "f", "", "Read domains from file, one per line")
	quickCmd.Flags().StringVarP(&quickFormat, "format", "o", quickFormat, "Output format: text, json or yaml")
}
