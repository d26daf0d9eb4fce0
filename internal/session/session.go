// Package session implements the interactive shell's core: a single-owner
// database connection, statement execution with captured result sets,
// pagination, and an append-only query history.
package session

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	// sqlite driver for the session connection.
	_ "modernc.org/sqlite"
)

// Column describes one column of a table, as reported by PRAGMA table_info.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// Status is a point-in-time snapshot of the session. Pure read; building
// one has no side effects.
type Status struct {
	Connected bool
	Path      string
	Version   string
	PageSize  int
	History   int
	Last      *ResultSet
}

// Session owns the single active database connection and the last result
// set. All access is synchronous; the shell processes one command to
// completion before the next, so no locking is needed.
type Session struct {
	db       *sql.DB
	path     string
	version  string
	last     *ResultSet
	history  *HistoryLog
	pageSize int
}

// New returns a disconnected session with an empty history.
func New() *Session {
	return &Session{
		history:  &HistoryLog{},
		pageSize: DefaultPageSize,
	}
}

// Connect closes any existing connection and opens the database file at
// path, creating the parent directory if needed. The file is probed with
// SELECT sqlite_version() so an unreadable or corrupt file fails here
// rather than on the first statement. On failure the session stays
// disconnected but keeps its last result. On success the last result is
// cleared; history persists across reconnects.
func (s *Session) Connect(ctx context.Context, path string) error {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
		s.path = ""
		s.version = ""
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return &ConnectionError{Path: path, Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &ConnectionError{Path: path, Err: err}
	}
	// Pin a single underlying connection so total_changes() observes the
	// statement that just ran.
	db.SetMaxOpenConns(1)

	var version string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		_ = db.Close()
		return &ConnectionError{Path: path, Err: err}
	}
	// Force a read of the file header so a file that is not a database
	// fails here instead of on the first statement.
	var schemaVersion int
	if err := db.QueryRowContext(ctx, "PRAGMA schema_version").Scan(&schemaVersion); err != nil {
		_ = db.Close()
		return &ConnectionError{Path: path, Err: err}
	}

	s.db = db
	s.path = path
	s.version = version
	s.last = nil
	return nil
}

// Connected reports whether the session has an open database.
func (s *Session) Connected() bool { return s.db != nil }

// Path returns the connected database file path, or "" when disconnected.
func (s *Session) Path() string { return s.path }

// ServerVersion returns the engine version reported at connect time.
func (s *Session) ServerVersion() string { return s.version }

// LastResult returns the result of the most recent successful Execute,
// or nil. Failed statements never replace it.
func (s *Session) LastResult() *ResultSet { return s.last }

// History returns the session's query log.
func (s *Session) History() *HistoryLog { return s.history }

// PageSize returns the configured page size.
func (s *Session) PageSize() int { return s.pageSize }

// SetPageSize sets the page size used for result display.
func (s *Session) SetPageSize(n int) error {
	if n < 1 {
		return &InvalidArgumentError{Name: "page size", Value: n}
	}
	s.pageSize = n
	return nil
}

// Execute runs the statement verbatim against the engine and captures the
// outcome as a ResultSet. Statements that report no result columns are
// write-type; their affected-row count is read back from the engine.
// Every execution, successful or not, appends one history entry. On
// failure the returned ResultSet carries OK=false and the engine message,
// the previous last result is kept, and the error is a *QueryError.
func (s *Session) Execute(ctx context.Context, statement string) (*ResultSet, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}

	// Snapshot the engine's change counter so write statements can report
	// an accurate affected-row count (DDL leaves the counter untouched).
	var before int64
	if err := s.db.QueryRowContext(ctx, "SELECT total_changes()").Scan(&before); err != nil {
		return nil, &QueryError{Statement: statement, Err: err}
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, statement)
	if err != nil {
		return s.failed(statement, start, err)
	}

	rs, err := collect(rows, statement)
	if err != nil {
		return s.failed(statement, start, err)
	}

	if !rs.ReadOnly() {
		// The driver reported no columns, so the statement was a write.
		var after int64
		if err := s.db.QueryRowContext(ctx, "SELECT total_changes()").Scan(&after); err != nil {
			return s.failed(statement, start, err)
		}
		rs.Affected = after - before
	}

	rs.Elapsed = time.Since(start)
	rs.OK = true
	s.last = rs
	s.history.Append(HistoryEntry{
		Statement: statement,
		Timestamp: start,
		Elapsed:   rs.Elapsed,
		Rows:      rs.RowCount,
		Affected:  rs.Affected,
		OK:        true,
	})
	return rs, nil
}

// failed builds the failure ResultSet, records it in history, and wraps
// the engine error. Failed queries stay auditable.
func (s *Session) failed(statement string, start time.Time, err error) (*ResultSet, error) {
	rs := &ResultSet{
		Statement: statement,
		Elapsed:   time.Since(start),
		Err:       err.Error(),
	}
	s.history.Append(HistoryEntry{
		Statement: statement,
		Timestamp: start,
		Elapsed:   rs.Elapsed,
	})
	return rs, &QueryError{Statement: statement, Err: err}
}

// collect drains rows into a ResultSet, converting every scalar at the
// driver boundary. Each captured row has exactly len(Columns) values.
func collect(rows *sql.Rows, statement string) (*ResultSet, error) {
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Statement: statement, Columns: cols}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make([]Value, len(cols))
		for i, v := range raw {
			row[i] = valueOf(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rs.RowCount = len(rs.Rows)
	return rs, nil
}

// Tables lists the user tables in the connected database, ordered by
// name. Metadata lookups are not recorded in history.
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &QueryError{Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Err: err}
	}
	return names, nil
}

// Describe returns the column descriptors for a table. A table the engine
// has no metadata for is an UnknownTableError. Not recorded in history.
func (s *Session) Describe(ctx context.Context, table string) ([]Column, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, type, "notnull", pk, dflt_value FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, &QueryError{Err: err}
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var (
			name, typ   string
			notNull, pk int
			dflt        sql.NullString
		)
		if err := rows.Scan(&name, &typ, &notNull, &pk, &dflt); err != nil {
			return nil, &QueryError{Err: err}
		}
		cols = append(cols, Column{
			Name:       name,
			Type:       typ,
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
			Default:    dflt.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Err: err}
	}

	if len(cols) == 0 {
		return nil, &UnknownTableError{Table: table}
	}
	return cols, nil
}

// Status snapshots the session state.
func (s *Session) Status() Status {
	return Status{
		Connected: s.db != nil,
		Path:      s.path,
		Version:   s.version,
		PageSize:  s.pageSize,
		History:   s.history.Len(),
		Last:      s.last,
	}
}

// Close releases the connection. Safe to call when disconnected.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.path = ""
	s.version = ""
	return err
}
