package sqlexec

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// noRowsMessage is the terminal (non-error) result for statements that
// produce an empty result set.
const noRowsMessage = "Query executed successfully (no rows returned)."

// maxRows caps how many data rows a formatted table shows. Rows beyond the
// cap still count toward column widths and the truncation summary.
const maxRows = 25

// FormatRows renders headers and rows as a fixed-width text table: a header
// row, a dash separator joined by "-+-", up to maxRows data rows with cells
// left-justified and joined by " | ", and a truncation summary when rows
// were cut. Pure: identical inputs produce identical output.
func FormatRows(headers []string, rows [][]any) string {
	if len(rows) == 0 {
		return noRowsMessage
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, value := range row {
			s := stringify(value)
			cells[i][j] = s
			if j < len(widths) && len(s) > widths[j] {
				widths[j] = len(s)
			}
		}
	}

	lines := make([]string, 0, 3+maxRows)
	lines = append(lines, joinRow(headers, widths))

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}
	lines = append(lines, strings.Join(dashes, "-+-"))

	for i, row := range cells {
		if i == maxRows {
			break
		}
		lines = append(lines, joinRow(row, widths))
	}
	if len(rows) > maxRows {
		lines = append(lines, fmt.Sprintf("... %d more rows truncated ...", len(rows)-maxRows))
	}

	return strings.Join(lines, "\n")
}

func joinRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		width := 0
		if i < len(widths) {
			width = widths[i]
		}
		padded[i] = pad(cell, width)
	}
	return strings.Join(padded, " | ")
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// stringify renders a driver value the way a table cell should read.
// Byte slices and driver.Valuer wrappers (numerics, intervals) are unwrapped
// first so cells carry their SQL text rather than Go struct dumps.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case []byte:
		return string(v)
	}
	if dv, ok := value.(driver.Valuer); ok {
		if inner, err := dv.Value(); err == nil {
			switch iv := inner.(type) {
			case nil:
				return "<nil>"
			case string:
				return iv
			case []byte:
				return string(iv)
			default:
				return fmt.Sprint(inner)
			}
		}
	}
	return fmt.Sprint(value)
}
