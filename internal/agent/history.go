package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/gmunumel/mcp-browse-me/internal/store"
)

// threadHistory adapts one stored chat thread to the chat-message history
// the conversation memory expects. Every mutation writes the whole
// transcript back, so the stored list stays a prefix-consistent replica of
// the conversation.
type threadHistory struct {
	store     store.ChatStore
	sessionID uuid.UUID
}

var _ schema.ChatMessageHistory = (*threadHistory)(nil)

func newThreadHistory(s store.ChatStore, sessionID uuid.UUID) *threadHistory {
	return &threadHistory{store: s, sessionID: sessionID}
}

// Messages returns the stored transcript.
func (h *threadHistory) Messages(ctx context.Context) ([]llms.ChatMessage, error) {
	models, err := h.store.LoadMessages(ctx, h.sessionID)
	if err != nil {
		return nil, err
	}
	messages := make([]llms.ChatMessage, 0, len(models))
	for _, m := range models {
		messages = append(messages, m.ToChatMessage())
	}
	return messages, nil
}

// AddMessage appends one message and persists the whole transcript.
func (h *threadHistory) AddMessage(ctx context.Context, message llms.ChatMessage) error {
	models, err := h.store.LoadMessages(ctx, h.sessionID)
	if err != nil {
		return err
	}
	models = append(models, llms.ConvertChatMessageToModel(message))
	return h.store.SaveMessages(ctx, h.sessionID, models)
}

// AddUserMessage appends a human message.
func (h *threadHistory) AddUserMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, llms.HumanChatMessage{Content: text})
}

// AddAIMessage appends an AI message.
func (h *threadHistory) AddAIMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, llms.AIChatMessage{Content: text})
}

// SetMessages replaces the stored transcript.
func (h *threadHistory) SetMessages(ctx context.Context, messages []llms.ChatMessage) error {
	models := make([]llms.ChatMessageModel, 0, len(messages))
	for _, m := range messages {
		models = append(models, llms.ConvertChatMessageToModel(m))
	}
	return h.store.SaveMessages(ctx, h.sessionID, models)
}

// Clear empties the stored transcript. The thread row is kept; sessions are
// never deleted.
func (h *threadHistory) Clear(ctx context.Context) error {
	return h.store.SaveMessages(ctx, h.sessionID, []llms.ChatMessageModel{})
}
