// Package actions maps client action names onto MCP tool calls against a
// spawned server process.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gmunumel/mcp-browse-me/internal/config"
)

// Action names accepted by the CLI and the HTTP facade. The set is closed:
// adding one means adding a constant, an arm in toolCall, and a case in
// Parse.
type Action string

const (
	ActionHello       Action = "hello"
	ActionGoodbye     Action = "goodbye"
	ActionBrowseFiles Action = "browse_files"
	ActionQueryDB     Action = "query_db"
	ActionListTables  Action = "list_tables"
)

// All lists every known action in display order.
func All() []Action {
	return []Action{ActionHello, ActionGoodbye, ActionBrowseFiles, ActionQueryDB, ActionListTables}
}

// ErrUnknownAction reports an action outside the closed set. It is a local
// validation error: no subprocess is spawned for it.
var ErrUnknownAction = errors.New("unknown action")

// ErrServerNotFound reports that the MCP server executable could not be
// located. This is a configuration error, not a transport failure.
var ErrServerNotFound = errors.New("MCP server executable not found")

// Parse validates a raw action name.
func Parse(raw string) (Action, error) {
	action := Action(raw)
	switch action {
	case ActionHello, ActionGoodbye, ActionBrowseFiles, ActionQueryDB, ActionListTables:
		return action, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// toolCall returns the tool name and arguments for an action. value feeds
// the single string argument each tool takes; list_tables ignores it.
func (a Action) toolCall(value string) (string, map[string]any) {
	switch a {
	case ActionHello:
		return "say_hello", map[string]any{"name": value}
	case ActionGoodbye:
		return "say_goodbye", map[string]any{"name": value}
	case ActionBrowseFiles:
		return "browse_files", map[string]any{"path": value}
	case ActionQueryDB:
		return "query_database", map[string]any{"query": value}
	case ActionListTables:
		return "list_tables", map[string]any{}
	default:
		// Parse keeps this unreachable.
		return "", nil
	}
}

// Runner spawns the tool server and performs single-shot MCP calls against
// it: one subprocess, one handshake, one call, teardown. Nothing is reused
// between calls and nothing is retried.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
}

// NewRunner creates a runner bound to the given configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, log: logger}
}

// Run executes one action end to end and returns the first text content
// item of the tool result.
func (r *Runner) Run(ctx context.Context, action Action, value string) (string, error) {
	if _, err := Parse(string(action)); err != nil {
		return "", err
	}

	bin, err := r.resolveServer()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, bin)
	cmd.Stderr = os.Stderr

	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-browse-me-client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return "", fmt.Errorf("connect to MCP server: %w", err)
	}
	defer session.Close()

	r.logTools(ctx, session)

	name, args := action.toolCall(value)
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}
	return ResponseText(res), nil
}

// resolveServer locates the server executable up front so a missing binary
// surfaces as ErrServerNotFound rather than an opaque spawn failure.
func (r *Runner) resolveServer() (string, error) {
	path, err := exec.LookPath(r.cfg.ServerCmd)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrServerNotFound, r.cfg.ServerCmd)
	}
	return path, nil
}

// logTools records the tools the server advertises for this session.
func (r *Runner) logTools(ctx context.Context, session *mcp.ClientSession) {
	res, err := session.ListTools(ctx, nil)
	if err != nil {
		r.log.Warn("Failed to list tools", "error", err)
		return
	}
	names := make([]string, len(res.Tools))
	for i, tool := range res.Tools {
		names[i] = tool.Name
	}
	r.log.Info("Available tools", "tools", names)
}

// ResponseText extracts the first text content item from a tool result.
// Anything after the first item is ignored: this tool surface follows a
// single-content convention, and the shim keeps that contract explicit.
func ResponseText(res *mcp.CallToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return "No response content received"
	}
	if text, ok := res.Content[0].(*mcp.TextContent); ok {
		return text.Text
	}
	return "No response content received"
}
