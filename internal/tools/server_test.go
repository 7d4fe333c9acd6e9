package tools

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gmunumel/mcp-browse-me/internal/config"
)

// newTestSession connects a client to the tool server over in-memory
// transports.
func newTestSession(t *testing.T, cfg *config.Config) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	server := NewRegistry(cfg, slog.Default()).NewServer()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Wait() })

	client := mcp.NewClient(&mcp.Implementation{Name: "tools-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool %s failed: %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("CallTool %s returned no content", name)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool %s returned %T, want text content", name, res.Content[0])
	}
	return text.Text
}

func TestListTools(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	got := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, want := range []string{"say_hello", "say_goodbye", "browse_files", "query_database", "list_tables"} {
		if !got[want] {
			t.Errorf("tool %q not advertised", want)
		}
	}
	if len(res.Tools) != 5 {
		t.Errorf("expected 5 tools, got %d", len(res.Tools))
	}
}

func TestSayHello(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	if got := callText(t, session, "say_hello", map[string]any{"name": "Alice"}); got != "Hello, Alice!" {
		t.Errorf("say_hello = %q, want %q", got, "Hello, Alice!")
	}
}

func TestSayGoodbye(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	if got := callText(t, session, "say_goodbye", map[string]any{"name": "Bob"}); got != "Goodbye, Bob!" {
		t.Errorf("say_goodbye = %q, want %q", got, "Goodbye, Bob!")
	}
}

func TestBrowseFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	session := newTestSession(t, &config.Config{ProjectRoot: "."})

	got := callText(t, session, "browse_files", map[string]any{"path": dir})
	want := "Files at " + dir + ": a.txt, b.txt"
	if got != want {
		t.Errorf("browse_files = %q, want %q", got, want)
	}
}

func TestBrowseFilesMissingPath(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	got := callText(t, session, "browse_files", map[string]any{"path": "/nonexistent"})
	if !strings.Contains(got, "does not exist") {
		t.Errorf("browse_files on missing path = %q, want it to mention %q", got, "does not exist")
	}
}

func TestBrowseFilesNotADirectory(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	got := callText(t, session, "browse_files", map[string]any{"path": file})
	if !strings.Contains(got, "is not a directory") {
		t.Errorf("browse_files on a file = %q, want it to mention %q", got, "is not a directory")
	}
}

func TestQueryDatabase(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{ProjectRoot: t.TempDir(), DatabaseURL: "sqlite:///demo.db"}
	session := newTestSession(t, cfg)

	if got := callText(t, session, "query_database", map[string]any{"query": "CREATE TABLE pets (name TEXT)"}); !strings.HasPrefix(got, "Query executed successfully.") {
		t.Fatalf("create table = %q", got)
	}
	if got := callText(t, session, "query_database", map[string]any{"query": "INSERT INTO pets (name) VALUES ('Rex')"}); got != "Query executed successfully. Rows affected: 1" {
		t.Errorf("insert = %q", got)
	}
	got := callText(t, session, "query_database", map[string]any{"query": "SELECT name FROM pets"})
	want := "name\n----\nRex "
	if got != want {
		t.Errorf("select = %q, want %q", got, want)
	}
}

func TestQueryDatabaseUnconfigured(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	got := callText(t, session, "query_database", map[string]any{"query": "SELECT 1"})
	want := "Failed to execute query: DATABASE_URL is not set. Add it to .env or the environment before querying."
	if got != want {
		t.Errorf("query without DATABASE_URL = %q, want %q", got, want)
	}
}

func TestListTables(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{ProjectRoot: t.TempDir(), DatabaseURL: "sqlite:///demo.db"}
	session := newTestSession(t, cfg)

	callText(t, session, "query_database", map[string]any{"query": "CREATE TABLE alpha (id INTEGER)"})
	callText(t, session, "query_database", map[string]any{"query": "CREATE TABLE beta (id INTEGER)"})

	got := callText(t, session, "list_tables", nil)
	if !strings.Contains(got, "alpha") || !strings.Contains(got, "beta") {
		t.Errorf("list_tables = %q, want it to list alpha and beta", got)
	}
}

func TestListTablesUnconfigured(t *testing.T) {
	t.Parallel()

	session := newTestSession(t, &config.Config{ProjectRoot: "."})
	if got := callText(t, session, "list_tables", nil); got != "DATABASE_URL is not set." {
		t.Errorf("list_tables without DATABASE_URL = %q, want %q", got, "DATABASE_URL is not set.")
	}
}
