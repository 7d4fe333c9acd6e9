package sqlexec

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// executePostgres runs query over a fresh connection that is closed before
// returning. The dispatcher is a passthrough, not a store; it does not pool.
func executePostgres(ctx context.Context, databaseURL, query string) (string, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return "", fmt.Errorf("connect to postgres: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	if len(fields) == 0 {
		// No result columns: INSERT/UPDATE/DDL. Close drains the statement
		// so the command tag carries the affected-row count.
		rows.Close()
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("execute statement: %w", err)
		}
		return fmt.Sprintf("Query executed successfully. Rows affected: %d", rows.CommandTag().RowsAffected()), nil
	}

	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return "", fmt.Errorf("read result row: %w", err)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate result rows: %w", err)
	}

	return FormatRows(headers, data), nil
}
