// Package api provides HTTP handlers for the MCP demo API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gmunumel/mcp-browse-me/internal/actions"
)

// ActionRunner executes one named action against the MCP server.
type ActionRunner interface {
	Run(ctx context.Context, action actions.Action, value string) (string, error)
}

// Chatter runs one stateful agent turn.
type Chatter interface {
	Chat(ctx context.Context, sessionID uuid.UUID, message string) (uuid.UUID, string, error)
}

// Handler serves the action and agent endpoints.
type Handler struct {
	runner  ActionRunner
	chatter Chatter // nil when the agent is not configured
}

// NewHandler creates a new Handler. chatter may be nil; /agent then answers
// 500 until the agent backends are configured.
func NewHandler(runner ActionRunner, chatter Chatter) *Handler {
	return &Handler{runner: runner, chatter: chatter}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Post("/actions", h.Actions)
	r.Post("/agent", h.Agent)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ActionRequest is the body of POST /actions.
type ActionRequest struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

// ActionResponse echoes the request alongside the server's reply.
type ActionResponse struct {
	Action   string `json:"action"`
	Value    string `json:"value"`
	Response string `json:"response"`
}

// AgentRequest is the body of POST /agent. SessionID is optional; omitting
// it starts a new session.
type AgentRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// AgentResponse carries the answer and the session to continue with.
type AgentResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// Health reports process liveness. Backends are optional and verified per
// request, so they are not part of the probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Actions runs one MCP action and echoes the request with the response text.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	action, err := actions.Parse(req.Action)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.runner.Run(r.Context(), action, req.Value)
	if err != nil {
		slog.Error("Action failed", "action", action, "error", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSON(w, http.StatusOK, ActionResponse{
		Action:   req.Action,
		Value:    req.Value,
		Response: response,
	})
}

// Agent runs one chat turn against the tool-calling agent.
func (h *Handler) Agent(w http.ResponseWriter, r *http.Request) {
	if h.chatter == nil {
		Error(w, http.StatusInternalServerError, "agent is not available")
		return
	}

	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			Error(w, http.StatusBadRequest, "session_id must be a UUID")
			return
		}
		sessionID = parsed
	}

	sessionID, answer, err := h.chatter.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		slog.Error("Agent request failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "agent request failed")
		return
	}

	JSON(w, http.StatusOK, AgentResponse{
		SessionID: sessionID.String(),
		Answer:    answer,
	})
}
