// Package introspect reads column and enum metadata out of a live database
// catalog. One Introspector exists per dialect; each satisfies schema.Source
// and talks to the database only through database.DB.
//
// Usage:
//
//	cfg := database.DefaultConfig(os.Getenv("DATABASE_URL"))
//	src, err := introspect.Open(ctx, cfg)
//	if err != nil { ... }
//	defer src.Close()
//
//	model, err := schema.Build(ctx, src, schema.Request{})
package introspect

import (
	"context"
	"time"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/database/mysql"
	"github.com/koustreak/schemats/internal/database/postgres"
	"github.com/koustreak/schemats/internal/database/sqlite"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/schema"
)

// Introspector is a schema.Source that owns its database connection.
type Introspector interface {
	schema.Source

	// Ping checks that the database still answers.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close()
}

// Open connects to the database described by cfg and returns the
// introspector for its dialect.
func Open(ctx context.Context, cfg *database.Config) (Introspector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case database.DriverPostgres:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgres(db, cfg.QueryTimeout), nil
	case database.DriverMySQL:
		db, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewMySQL(db, cfg.QueryTimeout), nil
	case database.DriverSQLite:
		db, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLite(db, cfg.QueryTimeout), nil
	default:
		return nil, errs.Newf(errs.ErrKindUnsupported, "unsupported database driver %q", cfg.Driver)
	}
}

// conn carries what every dialect shares: the connection and a per-query deadline.
type conn struct {
	db      database.DB
	timeout time.Duration
}

func (c conn) Close() { c.db.Close() }

func (c conn) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.db.Ping(ctx)
}

// withTimeout bounds one catalog query. A zero timeout leaves ctx untouched.
func (c conn) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// queryStrings runs a single-column query and returns its values.
func (c conn) queryStrings(ctx context.Context, q string, args ...any) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rows, err := c.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return database.ScanStrings(rows)
}

// groupEnumRows collects (name, value) rows into an enum map, keeping the
// row order of values within each enum.
func groupEnumRows(rows database.Rows) (map[string][]string, error) {
	defer rows.Close()

	enums := make(map[string][]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan enum value", err)
		}
		enums[name] = append(enums[name], value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enums, nil
}
