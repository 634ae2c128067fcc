package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/reality-check/internal/capability"
)

// capabilityChecker is satisfied by *capability.Service.
type capabilityChecker interface {
	Check(ctx context.Context, domain string) (capability.Response, error)
}

var capabilityJSON bool

var capabilityCmd = &cobra.Command{
	Use:   "capability <domain>",
	Short: "Run the TLS 1.3 capability check locally",
	Long: `Run the same check a capability backend answers on /inbound/check-reality:
a TLS 1.3-only handshake with X25519 preferred, followed by a diagnostic probe
when it fails. Useful to see what a backend on this machine would report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := appComponents(getAppContext(cmd))
		if err != nil {
			return err
		}
		return runCapability(commandContext(cmd), cmd.OutOrStdout(), comps.capability, args[0], capabilityJSON)
	},
}

func runCapability(ctx context.Context, out io.Writer, svc capabilityChecker, domain string, asJSON bool) error {
	resp, err := svc.Check(ctx, domain)
	if err != nil {
		return &InvalidCandidateError{Candidate: domain}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(capability.Ok(resp, ""))
	}

	status := "no"
	if resp.HasTLS13 {
		status = "yes"
	}
	fmt.Fprintf(out, "%s %s\n", colorInfo("Domain:"), domain)
	fmt.Fprintf(out, "%s %s\n", colorInfo("TLS 1.3:"), formatStatusWithColor(status))
	fmt.Fprintf(out, "%s %s\n", colorInfo("Key exchange:"), resp.KeyExchange)
	fmt.Fprintf(out, "%s %dms\n", colorInfo("Latency:"), resp.Latency)
	fmt.Fprintf(out, "%s %s\n", colorInfo("Message:"), resp.Message)
	return nil
}

func init() {
	rootCmd.AddCommand(capabilityCmd)

	capabilityCmd.Flags().BoolVar(&capabilityJSON, "json", false, "Print the backend response envelope as JSON")
}
