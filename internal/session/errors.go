package session

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by operations that need an open database.
var ErrNotConnected = errors.New("not connected to a database (use connect first)")

// ConnectionError reports a failure to open a database file.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot open database %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a statement the engine rejected. The failed statement
// is still recorded in history before this error is returned.
type QueryError struct {
	Statement string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// UnknownTableError reports a describe of a table that does not exist.
// Checked explicitly because PRAGMA table_info silently returns no rows
// for a missing table.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("table %q not found", e.Table)
}

// InvalidPageError reports a page number outside [1, Total].
type InvalidPageError struct {
	Number int
	Total  int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("page %d out of range (result has %d pages)", e.Number, e.Total)
}

// InvalidArgumentError reports a non-positive page size or history limit.
type InvalidArgumentError struct {
	Name  string
	Value int
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s must be a positive integer, got %d", e.Name, e.Value)
}
