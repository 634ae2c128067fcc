package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/khanhnv2901/reality-check/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the reality-check MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio)",
	Long:  "Start the MCP server on stdio so assistants can evaluate and quick-check candidate domains.",
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, err := appComponents(getAppContext(cmd))
		if err != nil {
			return err
		}
		s := mcpadapter.NewServer(Version, comps.evaluator)
		return server.ServeStdio(s)
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
