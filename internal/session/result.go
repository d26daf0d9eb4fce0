package session

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies which SQLite storage class a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

// Value is a single scalar read from the engine. It is a closed variant
// over the SQLite storage classes so downstream rendering and export code
// can switch on Kind instead of type-asserting driver values.
type Value struct {
	kind Kind
	i    int64
	r    float64
	s    string
	b    []byte
}

// Null returns the NULL value.
func Null() Value { return Value{kind: KindNull} }

// Integer returns an integer value.
func Integer(v int64) Value { return Value{kind: KindInteger, i: v} }

// Real returns a floating-point value.
func Real(v float64) Value { return Value{kind: KindReal, r: v} }

// Text returns a text value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Blob returns a blob value.
func Blob(v []byte) Value { return Value{kind: KindBlob, b: v} }

// Kind reports the storage class of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer payload. Valid only for KindInteger.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the real payload. Valid only for KindReal.
func (v Value) Float64() float64 { return v.r }

// Text returns the text payload. Valid only for KindText.
func (v Value) Text() string { return v.s }

// Blob returns the blob payload. Valid only for KindBlob.
func (v Value) Blob() []byte { return v.b }

// Native returns the value as the corresponding Go scalar: nil, int64,
// float64, string, or []byte. Used by the JSON exporter, where []byte
// encodes as a base64 string.
func (v Value) Native() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.r
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	default:
		return nil
	}
}

// String renders the value for display. NULL renders as "NULL" and blobs
// as base64, matching the documented export encoding.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBlob:
		return base64.StdEncoding.EncodeToString(v.b)
	default:
		return "NULL"
	}
}

// valueOf converts a scalar produced by the database/sql driver into a
// Value. The modernc sqlite driver hands back nil, int64, float64, string
// or []byte; anything else is rendered through fmt as text.
func valueOf(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case int64:
		return Integer(x)
	case float64:
		return Real(x)
	case string:
		return Text(x)
	case []byte:
		// Copy: the driver may reuse the buffer on the next scan.
		b := make([]byte, len(x))
		copy(b, x)
		return Blob(b)
	case bool:
		if x {
			return Integer(1)
		}
		return Integer(0)
	case time.Time:
		return Text(x.Format(time.RFC3339))
	default:
		return Text(fmt.Sprintf("%v", x))
	}
}

// ResultSet is an immutable snapshot of one executed statement: the column
// names, the captured rows, and execution metadata. Failed statements
// produce a ResultSet with OK=false and the engine's message in Err.
type ResultSet struct {
	Statement string
	Columns   []string
	Rows      [][]Value
	RowCount  int
	Affected  int64
	Elapsed   time.Duration
	OK        bool
	Err       string
}

// ReadOnly reports whether the statement produced rows rather than an
// affected-row count. The distinction comes from the driver's result
// shape, not from parsing the statement text.
func (rs *ResultSet) ReadOnly() bool { return len(rs.Columns) > 0 }

// Summary returns a one-line description for status and history display.
func (rs *ResultSet) Summary() string {
	if !rs.OK {
		return fmt.Sprintf("failed: %s", rs.Err)
	}
	if rs.ReadOnly() {
		return fmt.Sprintf("%d rows in %s", rs.RowCount, rs.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("%d rows affected in %s", rs.Affected, rs.Elapsed.Round(time.Millisecond))
}
