package introspect

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/database/sqlite"
	"github.com/koustreak/schemats/internal/schema"
)

// newSQLiteFile creates a database file from ddl and returns its path.
func newSQLiteFile(t *testing.T, ddl ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func openSQLite(t *testing.T, ddl ...string) *SQLite {
	t.Helper()
	path := newSQLiteFile(t, ddl...)

	db, err := sqlite.New(context.Background(), database.DefaultConfig("sqlite://"+path))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return NewSQLite(db, 0)
}

const blogDDL = `
CREATE TABLE posts (
	id         INTEGER PRIMARY KEY,
	title      VARCHAR(200) NOT NULL,
	body       TEXT,
	score      DOUBLE PRECISION DEFAULT 0,
	published  BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	meta       JSON,
	blob_data,
	count      UNSIGNED BIG INT
)`

func TestSQLite_ListTables(t *testing.T) {
	s := openSQLite(t,
		blogDDL,
		`CREATE TABLE authors (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`,
		`CREATE VIEW recent AS SELECT id, title FROM posts`,
	)

	tables, err := s.ListTables(context.Background(), "main")
	require.NoError(t, err)
	// AUTOINCREMENT creates sqlite_sequence, which is skipped.
	assert.Equal(t, []string{"authors", "posts", "recent"}, tables)
}

func TestSQLite_FetchColumns(t *testing.T) {
	s := openSQLite(t, blogDDL)

	cols, err := s.FetchColumns(context.Background(), "posts", "main")
	require.NoError(t, err)
	assert.Equal(t, []schema.ColumnMetadata{
		{Name: "id", UnderlyingType: "integer", IsNullable: false, HasDefault: true},
		{Name: "title", UnderlyingType: "varchar", IsNullable: false},
		{Name: "body", UnderlyingType: "text", IsNullable: true},
		{Name: "score", UnderlyingType: "real", IsNullable: true, HasDefault: true},
		{Name: "published", UnderlyingType: "boolean", IsNullable: false, HasDefault: true},
		{Name: "created_at", UnderlyingType: "datetime", IsNullable: false},
		{Name: "meta", UnderlyingType: "json", IsNullable: true},
		{Name: "blob_data", UnderlyingType: "blob", IsNullable: true},
		{Name: "count", UnderlyingType: "integer", IsNullable: true},
	}, cols)
}

func TestSQLite_CompositeKeyHasNoImplicitDefault(t *testing.T) {
	s := openSQLite(t, `CREATE TABLE tags (post_id INTEGER, tag TEXT, PRIMARY KEY (post_id, tag))`)

	cols, err := s.FetchColumns(context.Background(), "tags", "main")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.False(t, cols[0].HasDefault)
	assert.False(t, cols[0].IsNullable)
}

func TestSQLite_FetchColumns_UnknownTable(t *testing.T) {
	s := openSQLite(t, blogDDL)

	cols, err := s.FetchColumns(context.Background(), "missing", "main")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestSQLite_FetchEnums(t *testing.T) {
	s := openSQLite(t)

	enums, err := s.FetchEnums(context.Background(), "main")
	require.NoError(t, err)
	assert.Empty(t, enums)
}

func TestNormalizeSQLiteType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"INTEGER", "integer"},
		{"VARCHAR(255)", "varchar"},
		{"NUMERIC(10, 2)", "numeric"},
		{" Text ", "text"},
		{"NVARCHAR(10)", "text"},
		{"TINYINT", "integer"},
		{"MEDIUMBLOB", "blob"},
		{"FLOAT8", "real"},
		{"", "blob"},
		{"GEOMETRY", "geometry"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSQLiteType(tt.in), tt.in)
	}
}

func TestSQLite_BuildsModel(t *testing.T) {
	s := openSQLite(t, blogDDL)

	model, err := schema.Build(context.Background(), s, schema.Request{})
	require.NoError(t, err)
	require.Equal(t, []string{"posts"}, model.TableOrder)

	fields := model.Tables["posts"].Fields
	got := make(map[string]string, len(fields))
	for _, f := range fields {
		got[f.Name] = f.WriteType.String()
	}
	assert.Equal(t, "number", got["id"])
	assert.Equal(t, "string | null", got["body"])
	assert.Equal(t, "boolean", got["published"])
	assert.Equal(t, "Date | DateInput", got["created_at"])
	assert.Equal(t, "Object | null", got["meta"])
	assert.Equal(t, "string | null", got["blob_data"])
}
