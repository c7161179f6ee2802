package introspect

import (
	"context"
	"strings"
	"time"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/schema"
)

// SQLiteDefaultSchema is the name of the primary database of a connection.
const SQLiteDefaultSchema = "main"

// SQLite introspects SQLite through sqlite_master and pragma_table_info.
// SQLite has no enum types, so FetchEnums always returns an empty map.
type SQLite struct {
	conn
}

// NewSQLite returns a SQLite introspector over db.
func NewSQLite(db database.DB, queryTimeout time.Duration) *SQLite {
	return &SQLite{conn{db: db, timeout: queryTimeout}}
}

// DefaultSchema always returns "main".
func (s *SQLite) DefaultSchema(context.Context) (string, error) {
	return SQLiteDefaultSchema, nil
}

// ListTables returns the user tables and views of schemaName, sorted by
// name. Internal sqlite_ tables are skipped.
func (s *SQLite) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	q := `
		SELECT name
		FROM ` + quoteIdent(schemaName) + `.sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`

	tables, err := s.queryStrings(ctx, q)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "list tables", err)
	}
	return tables, nil
}

// FetchColumns returns the columns of table in declaration order.
//
// Declared types are normalized: lowercased, with any "(n)" size suffix
// removed. A declared type the vocabulary does not know is reduced to its
// SQLite affinity (integer, text, blob or real) when one of the affinity
// rules matches. An INTEGER PRIMARY KEY aliases the rowid and is treated
// as having a default.
func (s *SQLite) FetchColumns(ctx context.Context, table, schemaName string) ([]schema.ColumnMetadata, error) {
	const q = `
		SELECT name,
		       type,
		       "notnull",
		       dflt_value IS NOT NULL,
		       pk
		FROM pragma_table_info(?, ?)
		ORDER BY cid`

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, q, table, schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "fetch columns", err)
	}
	defer rows.Close()

	cols := make([]schema.ColumnMetadata, 0)
	pkCols := make([]int, 0, 1)
	for rows.Next() {
		var (
			c        schema.ColumnMetadata
			declared string
			notNull  bool
			pk       int
		)
		if err := rows.Scan(&c.Name, &declared, &notNull, &c.HasDefault, &pk); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan column", err)
		}
		c.UnderlyingType = normalizeSQLiteType(declared)
		c.IsNullable = !notNull && pk == 0
		if pk > 0 {
			pkCols = append(pkCols, len(cols))
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(pkCols) == 1 && cols[pkCols[0]].UnderlyingType == "integer" {
		cols[pkCols[0]].HasDefault = true
	}
	return cols, nil
}

// FetchEnums returns an empty map.
func (s *SQLite) FetchEnums(context.Context, string) (map[string][]string, error) {
	return map[string][]string{}, nil
}

// Vocabulary returns the SQLite type table.
func (s *SQLite) Vocabulary() *schema.Vocabulary {
	return schema.SQLiteVocabulary()
}

func normalizeSQLiteType(declared string) string {
	t := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return "blob"
	}
	if _, ok := schema.SQLiteVocabulary().Lookup(t); ok {
		return t
	}

	// https://www.sqlite.org/datatype3.html#determination_of_column_affinity
	switch {
	case strings.Contains(t, "int"):
		return "integer"
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), strings.Contains(t, "text"):
		return "text"
	case strings.Contains(t, "blob"):
		return "blob"
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return "real"
	}
	return t
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
