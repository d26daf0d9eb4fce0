package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession returns a session connected to a fresh database file.
func newTestSession(t *testing.T) *Session {
	t.Helper()

	s := New()
	t.Cleanup(func() { _ = s.Close() })

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, s.Connect(context.Background(), path))
	return s
}

func seedUsers(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Execute(ctx, `CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER,
		note TEXT DEFAULT 'n/a'
	)`)
	require.NoError(t, err)

	_, err = s.Execute(ctx, `INSERT INTO users (name, age) VALUES
		('alice', 30), ('bob', NULL), ('carol', 25)`)
	require.NoError(t, err)
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing parent directory", func(t *testing.T) {
		s := New()
		defer func() { _ = s.Close() }()

		path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
		require.NoError(t, s.Connect(ctx, path))

		assert.True(t, s.Connected())
		assert.Equal(t, path, s.Path())
		assert.NotEmpty(t, s.ServerVersion())
	})

	t.Run("rejects a file that is not a database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.db")
		require.NoError(t, os.WriteFile(path, []byte("this is not a database file"), 0644))

		s := New()
		defer func() { _ = s.Close() }()

		err := s.Connect(ctx, path)
		require.Error(t, err)

		var connErr *ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, path, connErr.Path)
		assert.False(t, s.Connected())
	})

	t.Run("failed connect keeps last result and leaves session disconnected", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		_, err := s.Execute(ctx, "SELECT * FROM users")
		require.NoError(t, err)
		last := s.LastResult()
		require.NotNil(t, last)

		bad := filepath.Join(t.TempDir(), "bad.db")
		require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0644))
		require.Error(t, s.Connect(ctx, bad))

		assert.False(t, s.Connected())
		assert.Same(t, last, s.LastResult())
	})

	t.Run("reconnect clears last result but keeps history", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		_, err := s.Execute(ctx, "SELECT * FROM users")
		require.NoError(t, err)
		require.NotNil(t, s.LastResult())
		historyLen := s.History().Len()

		other := filepath.Join(t.TempDir(), "other.db")
		require.NoError(t, s.Connect(ctx, other))

		assert.Nil(t, s.LastResult())
		assert.Equal(t, historyLen, s.History().Len())
	})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a connection", func(t *testing.T) {
		s := New()
		_, err := s.Execute(ctx, "SELECT 1")
		assert.ErrorIs(t, err, ErrNotConnected)
		assert.Equal(t, 0, s.History().Len())
	})

	t.Run("select one row", func(t *testing.T) {
		s := newTestSession(t)

		rs, err := s.Execute(ctx, "SELECT 1 AS x")
		require.NoError(t, err)

		assert.True(t, rs.OK)
		assert.Equal(t, []string{"x"}, rs.Columns)
		assert.Equal(t, 1, rs.RowCount)
		require.Len(t, rs.Rows, 1)
		require.Len(t, rs.Rows[0], 1)
		assert.Equal(t, Integer(1), rs.Rows[0][0])
		assert.Equal(t, 1, s.History().Len())
	})

	t.Run("row and column counts agree", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		rs, err := s.Execute(ctx, "SELECT id, name, age FROM users")
		require.NoError(t, err)

		assert.Equal(t, rs.RowCount, len(rs.Rows))
		for _, row := range rs.Rows {
			assert.Len(t, row, len(rs.Columns))
		}
	})

	t.Run("write statement reports affected rows", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		rs, err := s.Execute(ctx, "UPDATE users SET age = 40 WHERE age IS NOT NULL")
		require.NoError(t, err)

		assert.True(t, rs.OK)
		assert.False(t, rs.ReadOnly())
		assert.Empty(t, rs.Columns)
		assert.Equal(t, int64(2), rs.Affected)
	})

	t.Run("null values survive the scan", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		rs, err := s.Execute(ctx, "SELECT age FROM users WHERE name = 'bob'")
		require.NoError(t, err)
		require.Equal(t, 1, rs.RowCount)
		assert.True(t, rs.Rows[0][0].IsNull())
	})

	t.Run("malformed statement is recorded and reported", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		good, err := s.Execute(ctx, "SELECT * FROM users")
		require.NoError(t, err)
		historyLen := s.History().Len()

		rs, err := s.Execute(ctx, "SELCT 1")
		require.Error(t, err)

		var queryErr *QueryError
		require.ErrorAs(t, err, &queryErr)
		require.NotNil(t, rs)
		assert.False(t, rs.OK)
		assert.NotEmpty(t, rs.Err)

		// Failure is auditable but never replaces the last good result
		assert.Equal(t, historyLen+1, s.History().Len())
		assert.Same(t, good, s.LastResult())
	})

	t.Run("elapsed time is measured", func(t *testing.T) {
		s := newTestSession(t)

		rs, err := s.Execute(ctx, "SELECT 1")
		require.NoError(t, err)
		assert.Greater(t, rs.Elapsed.Nanoseconds(), int64(0))
	})
}

func TestTables(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a connection", func(t *testing.T) {
		s := New()
		_, err := s.Tables(ctx)
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("lists user tables ordered by name", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)
		_, err := s.Execute(ctx, "CREATE TABLE accounts (id INTEGER PRIMARY KEY)")
		require.NoError(t, err)

		tables, err := s.Tables(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"accounts", "users"}, tables)
	})

	t.Run("is not recorded in history", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)
		before := s.History().Len()

		_, err := s.Tables(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, s.History().Len())
	})
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()

	t.Run("returns column descriptors", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		cols, err := s.Describe(ctx, "users")
		require.NoError(t, err)
		require.Len(t, cols, 4)

		assert.Equal(t, "id", cols[0].Name)
		assert.Equal(t, "INTEGER", cols[0].Type)
		assert.True(t, cols[0].PrimaryKey)

		assert.Equal(t, "name", cols[1].Name)
		assert.False(t, cols[1].Nullable)

		assert.Equal(t, "age", cols[2].Name)
		assert.True(t, cols[2].Nullable)
		assert.False(t, cols[2].PrimaryKey)

		assert.Equal(t, "note", cols[3].Name)
		assert.Equal(t, "'n/a'", cols[3].Default)
	})

	t.Run("unknown table", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)

		_, err := s.Describe(ctx, "nonexistent_table")
		var unknownErr *UnknownTableError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, "nonexistent_table", unknownErr.Table)
	})

	t.Run("is not recorded in history", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)
		before := s.History().Len()

		_, err := s.Describe(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, before, s.History().Len())
	})
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("disconnected", func(t *testing.T) {
		s := New()
		st := s.Status()

		assert.False(t, st.Connected)
		assert.Empty(t, st.Path)
		assert.Equal(t, DefaultPageSize, st.PageSize)
		assert.Equal(t, 0, st.History)
		assert.Nil(t, st.Last)
	})

	t.Run("connected with results", func(t *testing.T) {
		s := newTestSession(t)
		seedUsers(t, s)
		_, err := s.Execute(ctx, "SELECT * FROM users")
		require.NoError(t, err)

		st := s.Status()
		assert.True(t, st.Connected)
		assert.Equal(t, s.Path(), st.Path)
		assert.Equal(t, 3, st.History)
		require.NotNil(t, st.Last)
		assert.Equal(t, 3, st.Last.RowCount)
	})
}

func TestSetPageSize(t *testing.T) {
	s := New()

	require.NoError(t, s.SetPageSize(50))
	assert.Equal(t, 50, s.PageSize())

	var argErr *InvalidArgumentError
	require.ErrorAs(t, s.SetPageSize(0), &argErr)
	require.ErrorAs(t, s.SetPageSize(-3), &argErr)
	assert.Equal(t, 50, s.PageSize())
}

func TestClose(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Close())
	assert.False(t, s.Connected())

	// Idempotent
	require.NoError(t, s.Close())

	_, err := s.Execute(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectionError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ConnectionError{Path: "x.db", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "x.db")
}
