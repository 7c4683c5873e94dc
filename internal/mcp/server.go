// Package mcp exposes the guardrail registry as MCP tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/guardrails/internal/diagnostics"
	"github.com/ppiankov/guardrails/internal/metrics"
	"github.com/ppiankov/guardrails/internal/registry"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

// Source is recorded in the audit log for reconfigurations made by tools.
const Source = "mcp"

// ToolUser is the client state user for values checked by tools.
const ToolUser = "mcp"

// Config holds MCP server dependencies. Audit and Recorder may be nil.
type Config struct {
	Registry *registry.Registry
	Audit    *diagnostics.AuditSink
	Recorder *metrics.Recorder
	Version  string
}

// Server wraps the MCP SDK server with the guardrail tools.
type Server struct {
	mcpServer *mcpsdk.Server
	registry  *registry.Registry
	table     *thresholds.Table
	audit     *diagnostics.AuditSink
	recorder  *metrics.Recorder
}

// New creates an MCP server with every tool registered.
func New(cfg Config) *Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		registry: cfg.Registry,
		table:    thresholds.NewTable(cfg.Registry),
		audit:    cfg.Audit,
		recorder: cfg.Recorder,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "guardrails",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all guardrail tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guardrails_thresholds",
		Description: "List threshold guardrails with their warn and fail values. -1 means disabled.",
	}, s.handleThresholds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guardrails_set_threshold",
		Description: "Set the warn and fail values of a threshold guardrail. Invalid pairs are rejected and leave the guardrail unchanged.",
	}, s.handleSetThreshold)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guardrails_check_password",
		Description: "Check a password against the configured strength policy without storing it.",
	}, s.handleCheckPassword)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guardrails_generate_password",
		Description: "Generate a password that satisfies the configured strength policy.",
	}, s.handleGeneratePassword)
}
