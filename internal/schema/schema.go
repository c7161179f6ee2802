package schema

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/schemats/internal/logger"
)

// Source is the introspection collaborator the engine reads from.
// Implementations live in internal/introspect, one per database dialect.
type Source interface {
	// DefaultSchema returns the schema used when the caller names none
	// (e.g. "public" for Postgres, the current database for MySQL).
	DefaultSchema(ctx context.Context) (string, error)

	// ListTables returns the tables of schema in a stable order.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// FetchColumns returns the columns of one table in ordinal order.
	FetchColumns(ctx context.Context, table, schema string) ([]ColumnMetadata, error)

	// FetchEnums returns every enum type of schema with its literals.
	FetchEnums(ctx context.Context, schema string) (map[string][]string, error)

	// Vocabulary returns the dialect's type table.
	Vocabulary() *Vocabulary
}

// DefaultConcurrency bounds the per-table column fetches issued by Build.
const DefaultConcurrency = 8

// Request selects what Build introspects.
type Request struct {
	Schema      string   // empty means the source's default schema
	Tables      []string // empty means every table of the schema
	Concurrency int      // 0 means DefaultConcurrency
}

// Build introspects src and returns the synthesized model.
//
// The enum set is fetched before any table is synthesized: a column whose
// enum is unknown at resolution time would silently become `any`. Column
// fetches run concurrently, one per table, and are joined before the
// synchronous aggregation so the output order follows the table list, not
// completion order.
func Build(ctx context.Context, src Source, req Request) (*SchemaModel, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	schemaName := req.Schema
	if schemaName == "" {
		name, err := src.DefaultSchema(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve default schema: %w", err)
		}
		schemaName = name
	}

	tables := uniqueOrdered(req.Tables)
	if len(tables) == 0 {
		listed, err := src.ListTables(ctx, schemaName)
		if err != nil {
			return nil, fmt.Errorf("list tables of schema %q: %w", schemaName, err)
		}
		tables = listed
	}

	enums, err := src.FetchEnums(ctx, schemaName)
	if err != nil {
		return nil, fmt.Errorf("fetch enums of schema %q: %w", schemaName, err)
	}

	limit := req.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	columns := make([][]ColumnMetadata, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, table := range tables {
		g.Go(func() error {
			cols, err := src.FetchColumns(gctx, table, schemaName)
			if err != nil {
				return fmt.Errorf("fetch columns of table %q: %w", table, err)
			}
			columns[i] = cols
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byTable := make(map[string][]ColumnMetadata, len(tables))
	for i, table := range tables {
		byTable[table] = columns[i]
	}

	model, err := NewResolver(src.Vocabulary()).Aggregate(AggregateInput{
		Schema:  schemaName,
		Tables:  tables,
		Columns: byTable,
		Enums:   enums,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range model.Warnings {
		log.WarnWith(w.Message, logger.Fields{"schema": schemaName, "table": w.Table})
	}
	log.With().
		Str("schema", schemaName).
		Int("tables", len(model.TableOrder)).
		Int("enums", len(model.Enums)).
		Dur("elapsed", time.Since(start)).
		Logger().
		Debug("schema synthesized")

	return model, nil
}
