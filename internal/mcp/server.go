// Package mcp exposes domain evaluation as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/khanhnv2901/reality-check/internal/reality"
)

const (
	ToolEvaluate = "reality_evaluate_domain"
	ToolQuick    = "reality_quick_check"
)

// Evaluator runs a full evaluation. *reality.Evaluator satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, candidate string) reality.EvaluationResult
}

// NewServer creates an MCP server with the evaluation tools registered.
func NewServer(version string, evaluator Evaluator) *server.MCPServer {
	s := server.NewMCPServer(
		"reality-check",
		version,
		server.WithToolCapabilities(true),
	)
	registerTools(s, evaluator)
	return s
}

func registerTools(s *server.MCPServer, evaluator Evaluator) {
	s.AddTool(
		mcplib.NewTool(ToolEvaluate,
			mcplib.WithDescription("Probe a domain and score it as a REALITY camouflage target (TLS 1.3, latency, risk)"),
			mcplib.WithString("domain",
				mcplib.Required(),
				mcplib.Description("Candidate host, optionally with :port"),
			),
		),
		handleEvaluate(evaluator),
	)

	s.AddTool(
		mcplib.NewTool(ToolQuick,
			mcplib.WithDescription("Offline format and risk check for a domain; no network access"),
			mcplib.WithString("domain",
				mcplib.Required(),
				mcplib.Description("Candidate host, optionally with :port"),
			),
		),
		handleQuick,
	)
}

func handleEvaluate(evaluator Evaluator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		domain, err := request.RequireString("domain")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if evaluator == nil {
			return errorResult("evaluator not configured"), nil
		}
		return jsonResult(evaluator.Evaluate(ctx, domain))
	}
}

func handleQuick(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	domain, err := request.RequireString("domain")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(reality.QuickCheck(domain))
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
