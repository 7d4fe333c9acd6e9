// Package store persists chat threads keyed by session.
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// ChatStore loads and saves whole chat transcripts. A save replaces the full
// message list for its session; there is no partial update, and concurrent
// saves for the same session are last-write-wins.
type ChatStore interface {
	// LoadMessages returns the stored transcript for a session. A session
	// that was never saved yields an empty slice, not an error.
	LoadMessages(ctx context.Context, sessionID uuid.UUID) ([]llms.ChatMessageModel, error)

	// SaveMessages upserts the full transcript for a session and refreshes
	// its modification timestamp.
	SaveMessages(ctx context.Context, sessionID uuid.UUID, messages []llms.ChatMessageModel) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying connections.
	Close()
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() uuid.UUID {
	return uuid.New()
}
