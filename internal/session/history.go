package session

import "time"

// HistoryEntry summarizes one executed statement. Entries keep only the
// summary fields so the log never pins a full result set in memory.
type HistoryEntry struct {
	Seq       int
	Statement string
	Timestamp time.Time
	Elapsed   time.Duration
	Rows      int
	Affected  int64
	OK        bool
}

// HistoryLog is the append-only record of executed statements. Sequence
// numbers are 1-based, strictly increasing and gapless within a session;
// no entry is ever mutated or removed. It is not persisted across runs.
type HistoryLog struct {
	entries []HistoryEntry
}

// Append records an entry, assigning the next sequence number, and
// returns the stored entry.
func (l *HistoryLog) Append(e HistoryEntry) HistoryEntry {
	e.Seq = len(l.entries) + 1
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of recorded entries.
func (l *HistoryLog) Len() int { return len(l.entries) }

// Recent returns the last limit entries in chronological order (oldest of
// the returned slice first). A limit larger than the log returns the whole
// log. A limit below 1 is an InvalidArgumentError.
func (l *HistoryLog) Recent(limit int) ([]HistoryEntry, error) {
	if limit < 1 {
		return nil, &InvalidArgumentError{Name: "history limit", Value: limit}
	}
	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	tail := l.entries[len(l.entries)-limit:]
	out := make([]HistoryEntry, len(tail))
	copy(out, tail)
	return out, nil
}
