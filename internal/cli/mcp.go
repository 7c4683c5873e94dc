package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/guardrails/internal/audit"
	"github.com/ppiankov/guardrails/internal/diagnostics"
	"github.com/ppiankov/guardrails/internal/guardrail"
	gmcp "github.com/ppiankov/guardrails/internal/mcp"
	"github.com/ppiankov/guardrails/internal/registry"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs an in-process guardrail registry as an MCP (Model Context Protocol) server over stdio.\nExposes tools: thresholds, set_threshold, check_password, generate_password.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, hash, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	configHash := &diagnostics.ConfigHash{}
	configHash.Set(hash)

	var sink *diagnostics.AuditSink
	sinks := []guardrail.Diagnostics{diagnostics.NewLogSink(logger.Logger)}
	if cfg.AuditLog != "" {
		log, err := audit.Open(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer log.Close()
		sink = diagnostics.NewAuditSink(log, configHash, logger.Logger)
		sinks = append(sinks, sink)
	}

	reg, err := registry.New(cfg.Guardrails, diagnostics.Multi(sinks...))
	if err != nil {
		return err
	}

	srv := gmcp.New(gmcp.Config{Registry: reg, Audit: sink, Version: version})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "guardrails MCP server running on stdio")
	return srv.Run(ctx)
}
