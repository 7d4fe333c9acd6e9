// invoke runs one MCP action from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gmunumel/mcp-browse-me/internal/actions"
	"github.com/gmunumel/mcp-browse-me/internal/config"
)

func usage() {
	names := make([]string, 0, len(actions.All()))
	for _, action := range actions.All() {
		names = append(names, string(action))
	}
	fmt.Fprintf(os.Stderr, "Usage: invoke <action> <value>\nActions: %s\n", strings.Join(names, ", "))
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 3 {
		usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	action, err := actions.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unknown action: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	runner := actions.NewRunner(cfg, logger)
	response, err := runner.Run(context.Background(), action, os.Args[2])
	if err != nil {
		slog.Error("Action failed", "action", action, "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nServer Response: %s\n\n", response)
}
