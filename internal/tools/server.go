// Package tools exposes the MCP tool surface: greetings, directory listing,
// and SQL passthrough against the configured database.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gmunumel/mcp-browse-me/internal/config"
	"github.com/gmunumel/mcp-browse-me/internal/sqlexec"
)

// Version is the tool server's advertised implementation version.
const Version = "0.1.0"

// HelloArgs are the arguments for say_hello.
type HelloArgs struct {
	Name string `json:"name" jsonschema:"name of the person to greet"`
}

// GoodbyeArgs are the arguments for say_goodbye.
type GoodbyeArgs struct {
	Name string `json:"name" jsonschema:"name of the person to send off"`
}

// BrowseArgs are the arguments for browse_files.
type BrowseArgs struct {
	Path string `json:"path" jsonschema:"directory whose entries should be listed"`
}

// QueryArgs are the arguments for query_database.
type QueryArgs struct {
	Query string `json:"query" jsonschema:"SQL statement to run against the configured database"`
}

// ListTablesArgs are the arguments for list_tables. The tool takes none.
type ListTablesArgs struct{}

// Registry owns the tool handlers and their shared dependencies.
type Registry struct {
	cfg  *config.Config
	disp *sqlexec.Dispatcher
	log  *slog.Logger
}

// NewRegistry creates a registry bound to the given configuration.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	return &Registry{
		cfg:  cfg,
		disp: sqlexec.NewDispatcher(cfg.ProjectRoot),
		log:  logger,
	}
}

// NewServer returns an MCP server with every tool registered.
func (reg *Registry) NewServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "mcp-browse-me", Version: Version}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: "say_hello", Description: "Greet a person by name."}, reg.SayHello)
	mcp.AddTool(server, &mcp.Tool{Name: "say_goodbye", Description: "Say goodbye to a person by name."}, reg.SayGoodbye)
	mcp.AddTool(server, &mcp.Tool{Name: "browse_files", Description: "List the entries of a directory, non-recursively."}, reg.BrowseFiles)
	mcp.AddTool(server, &mcp.Tool{Name: "query_database", Description: "Execute a SQL statement against the configured database."}, reg.QueryDatabase)
	mcp.AddTool(server, &mcp.Tool{Name: "list_tables", Description: "List the tables in the configured database."}, reg.ListTables)
	return server
}

// ToolNames lists the registered tool names in registration order.
func (reg *Registry) ToolNames() []string {
	return []string{"say_hello", "say_goodbye", "browse_files", "query_database", "list_tables"}
}

// SayHello greets the named person.
func (reg *Registry) SayHello(ctx context.Context, req *mcp.CallToolRequest, args HelloArgs) (*mcp.CallToolResult, any, error) {
	reg.log.Info("Generating greeting", "name", args.Name)
	return textResult(fmt.Sprintf("Hello, %s!", args.Name)), nil, nil
}

// SayGoodbye sends the named person off.
func (reg *Registry) SayGoodbye(ctx context.Context, req *mcp.CallToolRequest, args GoodbyeArgs) (*mcp.CallToolResult, any, error) {
	reg.log.Info("Generating farewell", "name", args.Name)
	return textResult(fmt.Sprintf("Goodbye, %s!", args.Name)), nil, nil
}

// BrowseFiles lists a directory's entries. Failures come back as descriptive
// text rather than protocol errors so the caller always has something to
// print.
func (reg *Registry) BrowseFiles(ctx context.Context, req *mcp.CallToolRequest, args BrowseArgs) (*mcp.CallToolResult, any, error) {
	path := expandHome(args.Path)
	reg.log.Info("Browsing files", "path", path)

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return textResult(fmt.Sprintf("The path '%s' does not exist.", path)), nil, nil
	case errors.Is(err, fs.ErrPermission):
		return textResult(fmt.Sprintf("Permission denied while accessing '%s'.", path)), nil, nil
	case err != nil:
		reg.log.Warn("browse_files stat failed", "path", path, "error", err)
		return textResult(fmt.Sprintf("The path '%s' does not exist.", path)), nil, nil
	case !info.IsDir():
		return textResult(fmt.Sprintf("The path '%s' is not a directory.", path)), nil, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		reg.log.Warn("browse_files read failed", "path", path, "error", err)
		return textResult(fmt.Sprintf("Permission denied while accessing '%s'.", path)), nil, nil
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	return textResult(fmt.Sprintf("Files at %s: %s", path, strings.Join(names, ", "))), nil, nil
}

// QueryDatabase executes caller-supplied SQL through the dispatcher. Errors
// are logged in full and surfaced as a short failure string.
func (reg *Registry) QueryDatabase(ctx context.Context, req *mcp.CallToolRequest, args QueryArgs) (*mcp.CallToolResult, any, error) {
	reg.log.Info("Executing SQL query", "query", args.Query)

	out, err := reg.disp.Execute(ctx, reg.cfg.DatabaseURL, args.Query)
	if err != nil {
		reg.log.Error("query_database failed", "error", err)
		return textResult(fmt.Sprintf("Failed to execute query: %v", err)), nil, nil
	}
	return textResult(out), nil, nil
}

// ListTables lists the tables visible to the configured database credential.
func (reg *Registry) ListTables(ctx context.Context, req *mcp.CallToolRequest, args ListTablesArgs) (*mcp.CallToolResult, any, error) {
	if reg.cfg.DatabaseURL == "" {
		return textResult("DATABASE_URL is not set."), nil, nil
	}

	query, err := sqlexec.ListTablesQuery(reg.cfg.DatabaseURL)
	if err != nil {
		reg.log.Error("list_tables failed", "error", err)
		return textResult(fmt.Sprintf("Failed to list tables: %v", err)), nil, nil
	}

	out, err := reg.disp.Execute(ctx, reg.cfg.DatabaseURL, query)
	if err != nil {
		reg.log.Error("list_tables failed", "error", err)
		return textResult(fmt.Sprintf("Failed to list tables: %v", err)), nil, nil
	}
	return textResult(out), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// expandHome resolves a leading ~ against the current user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
