// Package sqlexec executes caller-supplied SQL against the database selected
// by a connection string's scheme and renders results as text tables.
package sqlexec

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const sqliteScheme = "sqlite:///"

// These error strings are surfaced verbatim to tool callers, so they read as
// prose rather than conventional Go error text.
var (
	// ErrNotConfigured reports a missing connection string. It is a
	// configuration error, caught at the tool boundary.
	ErrNotConfigured = errors.New("DATABASE_URL is not set. Add it to .env or the environment before querying.")

	// ErrUnsupportedScheme reports a connection string whose scheme matches
	// no known backend. No connection is attempted for it.
	ErrUnsupportedScheme = errors.New("Unsupported DATABASE_URL scheme")
)

// backend identifies which driver a connection string selects.
type backend int

const (
	backendUnknown backend = iota
	backendSQLite
	backendPostgres
)

func backendFor(databaseURL string) backend {
	switch {
	case strings.HasPrefix(databaseURL, sqliteScheme):
		return backendSQLite
	case strings.HasPrefix(databaseURL, "postgresql://"), strings.HasPrefix(databaseURL, "postgres://"):
		return backendPostgres
	default:
		return backendUnknown
	}
}

// Dispatcher routes raw SQL to the backend selected by the connection
// string's scheme. Statements pass to the driver verbatim and execute with
// the privileges of the configured credential; there is no sanitization
// layer here.
type Dispatcher struct {
	root string
}

// NewDispatcher returns a dispatcher that resolves relative SQLite paths
// against root.
func NewDispatcher(root string) *Dispatcher {
	if root == "" {
		root = "."
	}
	return &Dispatcher{root: root}
}

// Execute runs query against the database selected by databaseURL and
// returns either a formatted result table or an affected-row message.
// Every call opens and closes its own connection; result sets are fetched
// eagerly before formatting.
func (d *Dispatcher) Execute(ctx context.Context, databaseURL, query string) (string, error) {
	if databaseURL == "" {
		return "", ErrNotConfigured
	}
	switch backendFor(databaseURL) {
	case backendSQLite:
		return d.executeSQLite(ctx, strings.TrimPrefix(databaseURL, sqliteScheme), query)
	case backendPostgres:
		return executePostgres(ctx, databaseURL, query)
	default:
		return "", fmt.Errorf("%w in '%s'.", ErrUnsupportedScheme, databaseURL)
	}
}

// ListTablesQuery returns the table-introspection statement for the backend
// selected by databaseURL.
func ListTablesQuery(databaseURL string) (string, error) {
	switch backendFor(databaseURL) {
	case backendSQLite:
		return "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name;", nil
	case backendPostgres:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema='public' ORDER BY table_name;", nil
	default:
		return "", fmt.Errorf("%w in '%s'.", ErrUnsupportedScheme, databaseURL)
	}
}
