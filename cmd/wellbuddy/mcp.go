package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/wellbuddy/internal/api"
	"github.com/kalambet/wellbuddy/internal/config"
	"github.com/kalambet/wellbuddy/internal/logging"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve mood tools over MCP on stdin/stdout",
	Long: `Serve the mood journal to an MCP client over the stdio transport.

Stdout carries the protocol; logs go to stderr and the configured log file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logCloser := logging.Setup(cfg.Log, os.Stderr)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore(store)

	mcpSrv := api.NewMCPServer(api.MCPDeps{Store: store, Version: version})
	slog.Info("MCP server started (stdio transport)")

	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
