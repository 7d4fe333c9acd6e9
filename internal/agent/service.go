// Package agent runs the tool-calling chat agent and its stateful session
// flow.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	lcmemory "github.com/tmc/langchaingo/memory"
	"github.com/tmc/langchaingo/schema"
	lctools "github.com/tmc/langchaingo/tools"

	"github.com/gmunumel/mcp-browse-me/internal/recall"
	"github.com/gmunumel/mcp-browse-me/internal/store"
)

// systemPrompt steers the executor toward tool use before answering.
const systemPrompt = "You are an assistant that can answer questions using MCP tools. Favor using the provided tools to collect information before responding."

// ErrUnavailable means the agent was not wired at startup (missing API key
// or chat store).
var ErrUnavailable = errors.New("agent is not available")

// Service owns the chat model, the MCP-backed tools, and the session flow.
// It is read-only after construction; every request builds its own executor
// around the session's history.
type Service struct {
	model      llms.Model
	tools      []lctools.Tool
	store      store.ChatStore
	memory     *recall.Memory // nil when vector memory is disabled
	transcript TranscriptLogger
	log        *slog.Logger
}

// NewService builds the agent service. memory may be nil; transcript may be
// nil to disable transcript logging.
func NewService(model llms.Model, runner ActionRunner, chatStore store.ChatStore, memory *recall.Memory, transcript TranscriptLogger, logger *slog.Logger) *Service {
	if transcript == nil {
		transcript = noopTranscriptLogger{}
	}
	return &Service{
		model:      deterministic{Model: model},
		tools:      mcpTools(runner),
		store:      chatStore,
		memory:     memory,
		transcript: transcript,
		log:        logger,
	}
}

// Chat runs one stateful turn. A zero session ID starts a new session. The
// full transcript is persisted through the session history as the turn runs;
// vector recall and indexing are best effort and never fail the turn.
func (s *Service) Chat(ctx context.Context, sessionID uuid.UUID, message string) (uuid.UUID, string, error) {
	if s.store == nil {
		return uuid.Nil, "", fmt.Errorf("%w: chat store is not configured", ErrUnavailable)
	}
	if sessionID == uuid.Nil {
		sessionID = store.NewSessionID()
	}

	history := newThreadHistory(s.store, sessionID)

	if s.memory != nil {
		recalled, err := s.memory.Recall(ctx, sessionID.String(), message)
		switch {
		case err != nil:
			s.log.Warn("Vector recall failed", "session_id", sessionID, "error", err)
		case len(recalled) > 0:
			note := "Context from memory:\n" + strings.Join(recalled, "\n")
			if err := history.AddMessage(ctx, llms.SystemChatMessage{Content: note}); err != nil {
				s.log.Warn("Failed to record recall context", "session_id", sessionID, "error", err)
			}
		}
	}

	answer, err := chains.Run(ctx, s.newExecutor(history), message, chains.WithTemperature(0))
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("run agent: %w", err)
	}

	s.transcript.Log(TranscriptEvent{SessionID: sessionID.String(), Role: "human", Content: message})
	s.transcript.Log(TranscriptEvent{SessionID: sessionID.String(), Role: "ai", Content: answer})

	if s.memory != nil {
		err := s.memory.Remember(ctx, sessionID.String(), []recall.Turn{
			{Role: "human", Content: message},
			{Role: "ai", Content: answer},
		})
		if err != nil {
			s.log.Warn("Vector indexing failed", "session_id", sessionID, "error", err)
		}
	}

	return sessionID, answer, nil
}

// newExecutor assembles a conversational executor whose memory reads and
// writes the session's stored transcript.
func (s *Service) newExecutor(history schema.ChatMessageHistory) *agents.Executor {
	buffer := lcmemory.NewConversationBuffer(lcmemory.WithChatHistory(history))
	conversational := agents.NewConversationalAgent(s.model, s.tools, agents.WithPromptPrefix(systemPrompt))
	return agents.NewExecutor(conversational, agents.WithMemory(buffer))
}

// deterministic pins temperature zero on every model call regardless of what
// the calling chain passes.
type deterministic struct {
	llms.Model
}

func (d deterministic) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return d.Model.GenerateContent(ctx, messages, append(options, llms.WithTemperature(0))...)
}
