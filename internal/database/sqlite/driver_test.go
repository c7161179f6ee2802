package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sqlite://data/app.db", "file:data/app.db?mode=ro"},
		{"sqlite3:///tmp/app.db", "file:/tmp/app.db?mode=ro"},
		{"app.sqlite", "file:app.sqlite?mode=ro"},
		{"file:app.db?mode=rw", "file:app.db?mode=rw"},
		{"sqlite://:memory:", ":memory:"},
		{"sqlite://", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDSN(tt.in), tt.in)
	}
}

func TestNew_QueriesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	ctx := context.Background()
	d, err := New(ctx, database.DefaultConfig("sqlite://"+path))
	require.NoError(t, err)
	defer d.Close()

	rows, err := d.Query(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	require.NoError(t, err)
	names, err := database.ScanStrings(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)

	row, err := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE name = ?`, "missing")
	require.NoError(t, err)
	var name string
	assert.True(t, errs.IsNotFound(row.Scan(&name)))
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(context.Background(), database.DefaultConfig(filepath.Join(t.TempDir(), "nope.db")))
	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(context.Background(), &database.Config{DSN: "sqlite://"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code sqlite3.ErrNo
		kind errs.ErrKind
	}{
		{sqlite3.ErrBusy, errs.ErrKindTimeout},
		{sqlite3.ErrPerm, errs.ErrKindPermissionDenied},
		{sqlite3.ErrCantOpen, errs.ErrKindConnectionFailed},
		{sqlite3.ErrError, errs.ErrKindQueryFailed},
	}
	for _, tt := range tests {
		got := mapError(sqlite3.Error{Code: tt.code}, "query failed")
		assert.Equal(t, tt.kind, got.Kind, tt.code.Error())
	}
}
