package introspect

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/schema"
)

// MySQL introspects MySQL and MariaDB through information_schema.
//
// MySQL has no named enum types. Every enum or set column gets its own
// registry entry named "<data_type>_<column_name>", whose literals are
// parsed out of column_type.
type MySQL struct {
	conn
}

// NewMySQL returns a MySQL introspector over db. queryTimeout bounds each
// catalog query; zero disables the bound.
func NewMySQL(db database.DB, queryTimeout time.Duration) *MySQL {
	return &MySQL{conn{db: db, timeout: queryTimeout}}
}

// DefaultSchema returns the database selected by the connection.
func (m *MySQL) DefaultSchema(ctx context.Context) (string, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	row, err := m.db.QueryRow(ctx, `SELECT DATABASE()`)
	if err != nil {
		return "", err
	}
	var name sql.NullString
	if err := row.Scan(&name); err != nil {
		return "", errs.Wrap(errs.KindOf(err), "resolve current database", err)
	}
	if !name.Valid || name.String == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "no database selected: name one in the connection string or pass a schema")
	}
	return name.String, nil
}

// ListTables returns every table and view of schemaName, sorted by name.
func (m *MySQL) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.columns
		WHERE table_schema = ?
		GROUP BY table_name
		ORDER BY table_name`

	tables, err := m.queryStrings(ctx, q, schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "list tables", err)
	}
	return tables, nil
}

// FetchColumns returns the columns of table in ordinal order.
func (m *MySQL) FetchColumns(ctx context.Context, table, schemaName string) ([]schema.ColumnMetadata, error) {
	const q = `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES'        AS is_nullable,
		       column_default IS NOT NULL AS has_default
		FROM information_schema.columns
		WHERE table_name   = ?
		  AND table_schema = ?
		ORDER BY ordinal_position`

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	rows, err := m.db.Query(ctx, q, table, schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "fetch columns", err)
	}
	defer rows.Close()

	cols := make([]schema.ColumnMetadata, 0)
	for rows.Next() {
		var c schema.ColumnMetadata
		if err := rows.Scan(&c.Name, &c.UnderlyingType, &c.IsNullable, &c.HasDefault); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan column", err)
		}
		c.UnderlyingType = strings.ToLower(c.UnderlyingType)
		if isMySQLEnum(c.UnderlyingType) {
			c.UnderlyingType = mysqlEnumName(c.UnderlyingType, c.Name)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// FetchEnums returns one enum per enum or set column of schemaName.
// Columns of different tables that share a name share one enum, whose
// literals are the union of both definitions.
func (m *MySQL) FetchEnums(ctx context.Context, schemaName string) (map[string][]string, error) {
	const q = `
		SELECT column_name,
		       data_type,
		       column_type
		FROM information_schema.columns
		WHERE data_type IN ('enum', 'set')
		  AND table_schema = ?
		ORDER BY table_name, ordinal_position`

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	rows, err := m.db.Query(ctx, q, schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "fetch enums", err)
	}
	defer rows.Close()

	enums := make(map[string][]string)
	for rows.Next() {
		var column, dataType, columnType string
		if err := rows.Scan(&column, &dataType, &columnType); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan enum column", err)
		}
		values, err := parseEnumLiterals(columnType)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindMalformedMetadata, "column "+column, err)
		}
		name := mysqlEnumName(strings.ToLower(dataType), column)
		enums[name] = append(enums[name], values...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enums, nil
}

// Vocabulary returns the MySQL type table.
func (m *MySQL) Vocabulary() *schema.Vocabulary {
	return schema.MySQLVocabulary()
}

func isMySQLEnum(dataType string) bool {
	return dataType == "enum" || dataType == "set"
}

func mysqlEnumName(dataType, column string) string {
	return dataType + "_" + column
}

// parseEnumLiterals extracts the quoted literals of a column_type such as
// "enum('a','b')". A quote inside a literal is escaped by doubling it or
// by a backslash.
func parseEnumLiterals(columnType string) ([]string, error) {
	open := strings.IndexByte(columnType, '(')
	end := strings.LastIndexByte(columnType, ')')
	if open < 0 || end < open {
		return nil, errs.Newf(errs.ErrKindMalformedMetadata, "unexpected column type %q", columnType)
	}
	body := columnType[open+1 : end]

	values := make([]string, 0)
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case !inQuote && ch == '\'':
			inQuote = true
		case !inQuote && (ch == ',' || ch == ' '):
		case !inQuote:
			return nil, errs.Newf(errs.ErrKindMalformedMetadata, "unexpected %q in column type %q", ch, columnType)
		case ch == '\\' && i+1 < len(body):
			i++
			cur.WriteByte(body[i])
		case ch == '\'' && i+1 < len(body) && body[i+1] == '\'':
			i++
			cur.WriteByte('\'')
		case ch == '\'':
			inQuote = false
			values = append(values, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if inQuote {
		return nil, errs.Newf(errs.ErrKindMalformedMetadata, "unterminated literal in column type %q", columnType)
	}
	return values, nil
}
