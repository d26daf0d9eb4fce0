// Package export serializes a result set to CSV, JSON, or a fixed-width
// text table. Files are written through a temporary path and renamed into
// place, so a failed export never leaves a partial file at the target.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/sqlcli-labs/sqlcli/internal/session"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use csv, json, or text)", s)
	}
}

// ErrEmptyResult is returned when the result set has no columns. A result
// with columns but zero rows is valid and produces a header-only file.
var ErrEmptyResult = errors.New("result has no columns to export")

// ExportError wraps an I/O or encoding failure during export.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export writes rs to path in the given format. The encoded bytes are
// placed at path atomically, so the file appears only after a fully
// successful write.
func Export(rs *session.ResultSet, path string, format Format) error {
	if len(rs.Columns) == 0 {
		return ErrEmptyResult
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(&buf, rs)
	case FormatJSON:
		err = writeJSON(&buf, rs)
	case FormatText:
		err = writeText(&buf, rs)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// writeCSV emits an RFC 4180 file: header first, one record per row in
// original order, NULL as an empty field, blobs as base64.
func writeCSV(w io.Writer, rs *session.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			if v.IsNull() {
				record[i] = ""
			} else {
				record[i] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON emits an indented array of flat objects in row order, using
// native JSON scalars. Blobs encode as base64 strings; a zero-row result
// is an empty array.
func writeJSON(w io.Writer, rs *session.ResultSet) error {
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

// writeText emits a fixed-width table: each column as wide as its widest
// value or its header, a dash rule under the header, rows in original
// order.
func writeText(w io.Writer, rs *session.ResultSet) error {
	widths := make([]int, len(rs.Columns))
	for i, col := range rs.Columns {
		widths[i] = len(col)
	}
	for _, row := range rs.Rows {
		for i, v := range row {
			if n := len(v.String()); n > widths[i] {
				widths[i] = n
			}
		}
	}

	cells := make([]string, len(rs.Columns))
	for i, col := range rs.Columns {
		cells[i] = pad(col, widths[i])
	}
	header := strings.Join(cells, " | ")
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", len(header))); err != nil {
		return err
	}

	for _, row := range rs.Rows {
		for i, v := range row {
			cells[i] = pad(v.String(), widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
