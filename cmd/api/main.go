// HTTP facade for the MCP demo: actions over REST plus a stateful agent.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/gmunumel/mcp-browse-me/internal/actions"
	"github.com/gmunumel/mcp-browse-me/internal/agent"
	"github.com/gmunumel/mcp-browse-me/internal/api"
	"github.com/gmunumel/mcp-browse-me/internal/config"
	"github.com/gmunumel/mcp-browse-me/internal/recall"
	"github.com/gmunumel/mcp-browse-me/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
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

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	runner := actions.NewRunner(cfg, logger)

	// Wire the agent when its backends are configured; the action endpoints
	// work without it.
	svc, cleanup, err := buildAgent(context.Background(), cfg, runner, logger)
	if err != nil {
		slog.Warn("Agent features disabled", "error", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	var chatter api.Chatter
	if svc != nil {
		chatter = svc
		slog.Info("Agent enabled", "model", cfg.AgentModel)
	}

	handler := api.NewHandler(runner, chatter)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	handler.RegisterRoutes(r)

	// Create server.
	// Note: agent turns can run long (model plus tool calls), so writes are
	// not capped.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// buildAgent assembles the optional agent stack: model client, Postgres chat
// store, vector memory, and transcript logging. It returns a nil service when
// prerequisites are missing so the API can start without agent support.
func buildAgent(ctx context.Context, cfg *config.Config, runner *actions.Runner, logger *slog.Logger) (*agent.Service, func(), error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		slog.Info("Agent features disabled (OPENAI_API_KEY not set)")
		return nil, nil, nil
	}
	if cfg.DatabaseURL == "" {
		slog.Info("Agent features disabled (DATABASE_URL not set)")
		return nil, nil, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	chatStore, err := store.NewPostgres(storeCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect chat store: %w", err)
	}
	slog.Info("Chat store connected")

	llm, err := openai.New(openai.WithModel(cfg.AgentModel))
	if err != nil {
		chatStore.Close()
		return nil, nil, fmt.Errorf("initialize model client: %w", err)
	}

	// Vector memory is best effort: without it the agent still answers, it
	// just recalls nothing.
	var memory *recall.Memory
	embedder, err := embeddings.NewEmbedder(llm)
	if err == nil {
		memory, err = recall.New(cfg.ChromaURL(), embedder)
	}
	if err != nil {
		slog.Warn("Vector memory disabled", "error", err)
		memory = nil
	} else {
		slog.Info("Vector memory connected", "url", cfg.ChromaURL())
	}

	transcript, err := agent.NewTranscriptLogger(cfg.Transcript, logger)
	if err != nil {
		chatStore.Close()
		return nil, nil, fmt.Errorf("initialize transcript logger: %w", err)
	}

	svc := agent.NewService(llm, runner, chatStore, memory, transcript, logger)
	cleanup := func() {
		if err := transcript.Close(); err != nil {
			slog.Error("Failed to close transcript logger", "error", err)
		}
		chatStore.Close()
	}
	return svc, cleanup, nil
}
