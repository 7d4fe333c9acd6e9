package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tmc/langchaingo/llms"
)

// Postgres implements ChatStore on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ ChatStore = (*Postgres)(nil)

// NewPostgres connects to databaseURL and ensures the chat_threads table
// exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chat_threads (
			session_id UUID PRIMARY KEY,
			messages   JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure chat_threads table: %w", err)
	}
	return nil
}

// LoadMessages returns the stored transcript for a session. An unknown
// session is implicit creation territory, so it loads as an empty slice.
func (s *Postgres) LoadMessages(ctx context.Context, sessionID uuid.UUID) ([]llms.ChatMessageModel, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT messages FROM chat_threads WHERE session_id = $1`, sessionID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []llms.ChatMessageModel{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load messages for session %s: %w", sessionID, err)
	}

	var messages []llms.ChatMessageModel
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("decode messages for session %s: %w", sessionID, err)
	}
	return messages, nil
}

// SaveMessages replaces the session's transcript in a single upsert.
func (s *Postgres) SaveMessages(ctx context.Context, sessionID uuid.UUID, messages []llms.ChatMessageModel) error {
	if messages == nil {
		messages = []llms.ChatMessageModel{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode messages for session %s: %w", sessionID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_threads (session_id, messages)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO UPDATE
		SET messages = EXCLUDED.messages, updated_at = NOW()
	`, sessionID, raw)
	if err != nil {
		return fmt.Errorf("save messages for session %s: %w", sessionID, err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}
