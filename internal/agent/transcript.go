package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gmunumel/mcp-browse-me/internal/config"
)

// TranscriptEvent is one NDJSON line in a session transcript file.
type TranscriptEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
}

// TranscriptLogger records chat turns without blocking request handling.
type TranscriptLogger interface {
	Log(event TranscriptEvent)
	Close() error
}

// NewTranscriptLogger returns a queue-backed NDJSON transcript logger, or a
// no-op logger when transcript logging is disabled.
func NewTranscriptLogger(cfg config.TranscriptConfig, logger *slog.Logger) (TranscriptLogger, error) {
	if !cfg.Enabled {
		return noopTranscriptLogger{}, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	t := &transcriptLogger{
		dir:    cfg.Dir,
		queue:  make(chan TranscriptEvent, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go t.drain()
	return t, nil
}

type noopTranscriptLogger struct{}

func (noopTranscriptLogger) Log(TranscriptEvent) {}
func (noopTranscriptLogger) Close() error        { return nil }

type transcriptLogger struct {
	dir    string
	queue  chan TranscriptEvent
	done   chan struct{}
	logger *slog.Logger

	mu      sync.Mutex
	closed  bool
	dropped int
}

// Log enqueues an event. When the queue is full the event is dropped and
// counted; a transcript line is never worth stalling a chat turn.
func (t *transcriptLogger) Log(event TranscriptEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- event:
	default:
		t.dropped++
	}
}

func (t *transcriptLogger) drain() {
	defer close(t.done)
	for event := range t.queue {
		if err := t.append(event); err != nil {
			t.logger.Warn("Transcript write failed", "session_id", event.SessionID, "error", err)
		}
	}
}

func (t *transcriptLogger) append(event TranscriptEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}

	path := filepath.Join(t.dir, event.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// Close flushes queued events and stops the writer goroutine.
func (t *transcriptLogger) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	dropped := t.dropped
	t.mu.Unlock()

	close(t.queue)
	<-t.done

	if dropped > 0 {
		t.logger.Warn("Transcript events dropped", "count", dropped)
	}
	return nil
}
