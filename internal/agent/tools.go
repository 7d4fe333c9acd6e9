package agent

import (
	"context"
	"strings"

	lctools "github.com/tmc/langchaingo/tools"

	"github.com/gmunumel/mcp-browse-me/internal/actions"
)

// ActionRunner is the slice of the transport shim the agent needs.
type ActionRunner interface {
	Run(ctx context.Context, action actions.Action, value string) (string, error)
}

// mcpTool exposes one action as an agent tool. Each call drives the full
// client flow: spawn the server, handshake, one tool call, teardown.
type mcpTool struct {
	runner      ActionRunner
	action      actions.Action
	name        string
	description string
}

var _ lctools.Tool = (*mcpTool)(nil)

func (t *mcpTool) Name() string        { return t.name }
func (t *mcpTool) Description() string { return t.description }

func (t *mcpTool) Call(ctx context.Context, input string) (string, error) {
	// Planner output tends to carry stray quotes and newlines.
	input = strings.Trim(strings.TrimSpace(input), `"`)
	return t.runner.Run(ctx, t.action, input)
}

// mcpTools builds the agent-facing wrapper for every action.
func mcpTools(runner ActionRunner) []lctools.Tool {
	return []lctools.Tool{
		&mcpTool{
			runner: runner, action: actions.ActionHello, name: "mcp_hello",
			description: "Greet somebody. Input: the name of the person to greet.",
		},
		&mcpTool{
			runner: runner, action: actions.ActionGoodbye, name: "mcp_goodbye",
			description: "Say goodbye to somebody. Input: the name of the person to send off.",
		},
		&mcpTool{
			runner: runner, action: actions.ActionBrowseFiles, name: "mcp_browse_files",
			description: "List the files in a directory. Input: an absolute or relative path.",
		},
		&mcpTool{
			runner: runner, action: actions.ActionQueryDB, name: "mcp_query_db",
			description: "Run a SQL query against the configured database. Input: a complete SQL statement.",
		},
		&mcpTool{
			runner: runner, action: actions.ActionListTables, name: "mcp_list_tables",
			description: "List the tables available in the configured database. Input is ignored.",
		},
	}
}
