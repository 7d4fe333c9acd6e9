// Package recall gives the agent a long-term memory backed by a Chroma
// collection. Turns are embedded as they complete and similar past turns are
// surfaced into the prompt on later questions.
package recall

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/chroma"
)

const (
	collectionName = "chat-history"

	// recallDepth caps how many past turns a single question pulls back in.
	recallDepth = 4
)

// Turn is one utterance to remember.
type Turn struct {
	Role    string
	Content string
}

// Memory indexes chat turns per session and retrieves the ones most similar
// to a query. All methods are safe for concurrent use.
type Memory struct {
	store chroma.Store
}

// New connects to the Chroma server at chromaURL and binds the chat-history
// collection, creating it if needed.
func New(chromaURL string, embedder embeddings.Embedder) (*Memory, error) {
	store, err := chroma.New(
		chroma.WithChromaURL(chromaURL),
		chroma.WithEmbedder(embedder),
		chroma.WithNameSpace(collectionName),
	)
	if err != nil {
		return nil, fmt.Errorf("connect chroma at %s: %w", chromaURL, err)
	}
	return &Memory{store: store}, nil
}

// Remember indexes the given turns under the session. Empty turns are
// skipped.
func (m *Memory) Remember(ctx context.Context, sessionID string, turns []Turn) error {
	docs := make([]schema.Document, 0, len(turns))
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		docs = append(docs, schema.Document{
			PageContent: turn.Role + ": " + turn.Content,
			Metadata: map[string]any{
				"session_id": sessionID,
				"role":       turn.Role,
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}

	if _, err := m.store.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("index turns: %w", err)
	}
	return nil
}

// Recall returns the stored turns from this session most similar to query,
// most similar first.
func (m *Memory) Recall(ctx context.Context, sessionID, query string) ([]string, error) {
	docs, err := m.store.SimilaritySearch(ctx, query, recallDepth,
		vectorstores.WithFilters(map[string]any{"session_id": sessionID}),
	)
	if err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}

	turns := make([]string, 0, len(docs))
	for _, doc := range docs {
		turns = append(turns, doc.PageContent)
	}
	return turns, nil
}
