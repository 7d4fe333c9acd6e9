package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// executeSQLite runs query against a single-file SQLite database. A relative
// path resolves against the dispatcher root; the file is created on first
// use, matching the driver's default behavior.
func (d *Dispatcher) executeSQLite(ctx context.Context, path, query string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.root, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	defer db.Close()

	if returnsRows(query) {
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return "", fmt.Errorf("execute query: %w", err)
		}
		defer rows.Close()
		return formatResultSet(rows)
	}

	res, err := db.ExecContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("execute statement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return fmt.Sprintf("Query executed successfully. Rows affected: %d", affected), nil
}

// returnsRows reports whether the statement should produce a result set.
// database/sql exposes no cursor description, so statements route to Query
// or Exec by leading keyword; the Exec path is what recovers the
// affected-row count for writes.
func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, kw := range [...]string{"SELECT", "WITH", "VALUES", "PRAGMA", "EXPLAIN"} {
		if strings.HasPrefix(q, kw) {
			return true
		}
	}
	return false
}

// formatResultSet drains rows eagerly and renders them as a table.
func formatResultSet(rows *sql.Rows) (string, error) {
	headers, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("read result columns: %w", err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(headers))
		ptrs := make([]any, len(headers))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan result row: %w", err)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate result rows: %w", err)
	}

	return FormatRows(headers, data), nil
}
