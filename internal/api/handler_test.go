package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gmunumel/mcp-browse-me/internal/actions"
)

type stubRunner struct {
	action   actions.Action
	value    string
	response string
	err      error
}

func (s *stubRunner) Run(_ context.Context, action actions.Action, value string) (string, error) {
	s.action = action
	s.value = value
	return s.response, s.err
}

type stubChatter struct {
	gotSession uuid.UUID
	gotMessage string
	sessionID  uuid.UUID
	answer     string
	err        error
}

func (s *stubChatter) Chat(_ context.Context, sessionID uuid.UUID, message string) (uuid.UUID, string, error) {
	s.gotSession = sessionID
	s.gotMessage = message
	return s.sessionID, s.answer, s.err
}

func newTestRouter(runner ActionRunner, chatter Chatter) chi.Router {
	r := chi.NewRouter()
	NewHandler(runner, chatter).RegisterRoutes(r)
	return r
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubRunner{}, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("Unexpected health body: %s", got)
	}
}

func TestActionsSuccess(t *testing.T) {
	runner := &stubRunner{response: "Hello, Alice!"}
	router := newTestRouter(runner, nil)

	body := strings.NewReader(`{"action": "hello", "value": "Alice"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/actions", body))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var got ActionResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.Action != "hello" || got.Value != "Alice" || got.Response != "Hello, Alice!" {
		t.Fatalf("Unexpected response: %+v", got)
	}
	if runner.action != actions.ActionHello || runner.value != "Alice" {
		t.Fatalf("Runner called with %q/%q", runner.action, runner.value)
	}
}

func TestActionsRejectsUnknownAction(t *testing.T) {
	runner := &stubRunner{}
	router := newTestRouter(runner, nil)

	body := strings.NewReader(`{"action": "reboot", "value": ""}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/actions", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if runner.action != "" {
		t.Fatalf("Runner must not run for an unknown action, ran %q", runner.action)
	}
}

func TestActionsRejectsInvalidJSON(t *testing.T) {
	router := newTestRouter(&stubRunner{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/actions", strings.NewReader("{not json")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
}

func TestActionsReportsRunnerFailure(t *testing.T) {
	runner := &stubRunner{err: actions.ErrServerNotFound}
	router := newTestRouter(runner, nil)

	body := strings.NewReader(`{"action": "list_tables", "value": ""}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/actions", body))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(got["error"], "MCP server executable not found") {
		t.Fatalf("Unexpected error body: %v", got)
	}
}

func TestAgentUnavailableWithoutBackend(t *testing.T) {
	router := newTestRouter(&stubRunner{}, nil)

	body := strings.NewReader(`{"message": "hi"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agent", body))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "agent is not available" {
		t.Fatalf("Unexpected error body: %v", got)
	}
}

func TestAgentRequiresMessage(t *testing.T) {
	chatter := &stubChatter{}
	router := newTestRouter(&stubRunner{}, chatter)

	body := strings.NewReader(`{"message": "  "}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agent", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if chatter.gotMessage != "" {
		t.Fatalf("Chatter must not run without a message")
	}
}

func TestAgentRejectsMalformedSessionID(t *testing.T) {
	router := newTestRouter(&stubRunner{}, &stubChatter{})

	body := strings.NewReader(`{"message": "hi", "session_id": "not-a-uuid"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agent", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
}

func TestAgentStartsNewSession(t *testing.T) {
	sessionID := uuid.New()
	chatter := &stubChatter{sessionID: sessionID, answer: "42"}
	router := newTestRouter(&stubRunner{}, chatter)

	body := strings.NewReader(`{"message": "what is the answer?"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agent", body))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if chatter.gotSession != uuid.Nil {
		t.Fatalf("Expected a nil session for a fresh chat, got %s", chatter.gotSession)
	}

	var got AgentResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.SessionID != sessionID.String() || got.Answer != "42" {
		t.Fatalf("Unexpected response: %+v", got)
	}
}

func TestAgentContinuesSession(t *testing.T) {
	sessionID := uuid.New()
	chatter := &stubChatter{sessionID: sessionID, answer: "still 42"}
	router := newTestRouter(&stubRunner{}, chatter)

	body := strings.NewReader(`{"message": "again?", "session_id": "` + sessionID.String() + `"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agent", body))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if chatter.gotSession != sessionID {
		t.Fatalf("Expected session %s to be passed through, got %s", sessionID, chatter.gotSession)
	}
	if chatter.gotMessage != "again?" {
		t.Fatalf("Unexpected message: %q", chatter.gotMessage)
	}
}

func TestAgentReportsChatFailure(t *testing.T) {
	chatter := &stubChatter{err: errors.New("model unreachable")}
	router := newTestRouter(&stubRunner{}, chatter)

	body := strings.NewReader(`{"message": "hi"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/agent", body))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "agent request failed" {
		t.Fatalf("Unexpected error body: %v", got)
	}
}
