package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sqlcli-labs/sqlcli/internal/session"
)

// renderResult writes a full result set to w in the requested format.
func renderResult(w io.Writer, rs *session.ResultSet, format string) error {
	if !rs.ReadOnly() {
		_, _ = fmt.Fprintf(w, "OK, %d rows affected (%s)\n", rs.Affected, rs.Elapsed.Round(time.Millisecond))
		return nil
	}

	switch format {
	case "json":
		return renderJSON(w, rs)
	case "csv":
		return renderCSV(w, rs)
	case "md", "markdown":
		return renderMarkdown(w, rs)
	default:
		renderRows(w, rs.Columns, rs.Rows)
		_, _ = fmt.Fprintf(w, "(%d rows in %s)\n", rs.RowCount, rs.Elapsed.Round(time.Millisecond))
		return nil
	}
}

// renderRows writes rows as a bordered table.
func renderRows(w io.Writer, cols []string, rows [][]session.Value) {
	if len(rows) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(cols))
		for i, v := range row {
			tr[i] = v.String()
		}
		t.AppendRow(tr)
	}

	t.Render()
}

func renderJSON(w io.Writer, rs *session.ResultSet) error {
	objects := make([]map[string]any, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		obj := make(map[string]any, len(rs.Columns))
		for i, col := range rs.Columns {
			obj[col] = row[i].Native()
		}
		objects = append(objects, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}

func renderCSV(w io.Writer, rs *session.ResultSet) error {
	_, _ = fmt.Fprintln(w, strings.Join(rs.Columns, ","))
	values := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			if v.IsNull() {
				values[i] = ""
			} else {
				values[i] = escapeCSV(v.String())
			}
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, rs *session.ResultSet) error {
	if len(rs.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(rs.Columns, " | "))
	seps := make([]string, len(rs.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	values := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			values[i] = v.String()
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// renderColumns writes the describe output for a table.
func renderColumns(w io.Writer, name string, cols []session.Column) {
	_, _ = fmt.Fprintf(w, "Table: %s\n", name)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "PK"})

	for _, col := range cols {
		nullable := "YES"
		if !col.Nullable {
			nullable = "NO"
		}
		pk := ""
		if col.PrimaryKey {
			pk = "YES"
		}
		t.AppendRow(table.Row{col.Name, col.Type, nullable, col.Default, pk})
	}
	t.Render()
}

// renderHistory writes history entries oldest first.
func renderHistory(w io.Writer, entries []session.HistoryEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No query history")
		return
	}

	for _, e := range entries {
		statement := e.Statement
		if len(statement) > 60 {
			statement = statement[:57] + "..."
		}
		outcome := fmt.Sprintf("%d rows", e.Rows)
		if e.Affected > 0 {
			outcome = fmt.Sprintf("%d affected", e.Affected)
		}
		if !e.OK {
			outcome = "failed"
		}
		_, _ = fmt.Fprintf(w, "%3d. [%s] %s\n     %s | %s\n",
			e.Seq,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			statement,
			e.Elapsed.Round(time.Millisecond),
			outcome,
		)
	}
}
