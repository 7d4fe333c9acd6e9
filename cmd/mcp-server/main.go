// MCP tool server speaking JSON-RPC over stdio.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gmunumel/mcp-browse-me/internal/config"
	"github.com/gmunumel/mcp-browse-me/internal/tools"
)

func main() {
	// stdout carries the protocol stream, so all logging goes to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	registry := tools.NewRegistry(cfg, logger)
	server := registry.NewServer()

	slog.Info("Starting MCP server on stdio", "tools", registry.ToolNames())
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
