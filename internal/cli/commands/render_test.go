package commands

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlcli-labs/sqlcli/internal/session"
)

func renderSample() *session.ResultSet {
	return &session.ResultSet{
		Statement: "SELECT id, name FROM users",
		Columns:   []string{"id", "name"},
		Rows: [][]session.Value{
			{session.Integer(1), session.Text("alice")},
			{session.Integer(2), session.Null()},
		},
		RowCount: 2,
		Elapsed:  3 * time.Millisecond,
		OK:       true,
	}
}

func TestRenderResultTable(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, renderSample(), "table"))

	output := buf.String()
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "NULL")
	assert.Contains(t, output, "(2 rows in 3ms)")
}

func TestRenderResultJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, renderSample(), "json"))

	var objects []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &objects))
	require.Len(t, objects, 2)
	assert.Equal(t, "alice", objects[0]["name"])
	assert.Nil(t, objects[1]["name"])
}

func TestRenderResultCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, renderSample(), "csv"))

	assert.Equal(t, "id,name\n1,alice\n2,\n", buf.String())
}

func TestRenderResultMarkdown(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, renderSample(), "md"))

	output := buf.String()
	assert.Contains(t, output, "| id | name |")
	assert.Contains(t, output, "| --- | --- |")
	assert.Contains(t, output, "| 1 | alice |")
}

func TestRenderResultWrite(t *testing.T) {
	rs := &session.ResultSet{
		Statement: "DELETE FROM users",
		Affected:  4,
		Elapsed:   time.Millisecond,
		OK:        true,
	}

	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, rs, "table"))
	assert.Equal(t, "OK, 4 rows affected (1ms)\n", buf.String())
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "a,b", want: `"a,b"`},
		{in: `say "hi"`, want: `"say ""hi"""`},
		{in: "line\nbreak", want: "\"line\nbreak\""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeCSV(tt.in))
	}
}

func TestRenderHistory(t *testing.T) {
	entries := []session.HistoryEntry{
		{Seq: 1, Statement: "SELECT * FROM users", Timestamp: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), Elapsed: 2 * time.Millisecond, Rows: 10, OK: true},
		{Seq: 2, Statement: "DELETE FROM users WHERE id = 1", Timestamp: time.Date(2024, 5, 1, 9, 31, 0, 0, time.UTC), Elapsed: time.Millisecond, Affected: 1, OK: true},
		{Seq: 3, Statement: "SELCT nope", Timestamp: time.Date(2024, 5, 1, 9, 32, 0, 0, time.UTC)},
	}

	buf := new(bytes.Buffer)
	renderHistory(buf, entries)

	output := buf.String()
	assert.Contains(t, output, "  1. [2024-05-01 09:30:00] SELECT * FROM users")
	assert.Contains(t, output, "10 rows")
	assert.Contains(t, output, "1 affected")
	assert.Contains(t, output, "failed")
}

func TestRenderHistoryEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	renderHistory(buf, nil)
	assert.Contains(t, buf.String(), "No query history")
}

func TestRenderColumns(t *testing.T) {
	cols := []session.Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "name", Type: "TEXT", Nullable: true, Default: "'unknown'"},
	}

	buf := new(bytes.Buffer)
	renderColumns(buf, "users", cols)

	output := buf.String()
	assert.Contains(t, output, "Table: users")
	assert.Contains(t, output, "INTEGER")
	assert.Contains(t, output, "'unknown'")
}
