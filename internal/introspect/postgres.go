package introspect

import (
	"context"
	"time"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/schema"
)

// PostgresDefaultSchema is used when no schema is requested.
const PostgresDefaultSchema = "public"

// Postgres introspects PostgreSQL through information_schema and pg_catalog.
type Postgres struct {
	conn
}

// NewPostgres returns a Postgres introspector over db. queryTimeout bounds
// each catalog query; zero disables the bound.
func NewPostgres(db database.DB, queryTimeout time.Duration) *Postgres {
	return &Postgres{conn{db: db, timeout: queryTimeout}}
}

// DefaultSchema always returns "public".
func (p *Postgres) DefaultSchema(context.Context) (string, error) {
	return PostgresDefaultSchema, nil
}

// ListTables returns every table and view that has columns in schemaName,
// sorted by name.
func (p *Postgres) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.columns
		WHERE table_schema = $1
		GROUP BY table_name
		ORDER BY table_name`

	tables, err := p.queryStrings(ctx, q, schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "list tables", err)
	}
	return tables, nil
}

// FetchColumns returns the columns of table in ordinal order. Array columns
// carry their udt name, e.g. "_int4".
func (p *Postgres) FetchColumns(ctx context.Context, table, schemaName string) ([]schema.ColumnMetadata, error) {
	const q = `
		SELECT column_name,
		       udt_name,
		       is_nullable = 'YES'        AS is_nullable,
		       column_default IS NOT NULL AS has_default
		FROM information_schema.columns
		WHERE table_name   = $1
		  AND table_schema = $2
		ORDER BY ordinal_position`

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, q, table, schemaName)
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
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// FetchEnums returns every enum type of schemaName with its labels.
func (p *Postgres) FetchEnums(ctx context.Context, schemaName string) (map[string][]string, error) {
	const q = `
		SELECT t.typname   AS name,
		       e.enumlabel AS value
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1
		ORDER BY t.typname ASC, e.enumlabel ASC`

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, q, schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.KindOf(err), "fetch enums", err)
	}
	return groupEnumRows(rows)
}

// Vocabulary returns the PostgreSQL type table.
func (p *Postgres) Vocabulary() *schema.Vocabulary {
	return schema.PostgresVocabulary()
}
