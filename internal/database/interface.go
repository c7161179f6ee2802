package database

import "context"

// DB is the read-only query surface the introspectors run catalog queries
// through. Each driver package (postgres, mysql, sqlite) provides one.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close()

	// Query runs a catalog query returning any number of rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow runs a catalog query returning at most one row. Errors,
	// including "no rows", surface from Row.Scan.
	QueryRow(ctx context.Context, sql string, args ...any) (Row, error)
}

// Rows is a forward-only result set. Close must be called even when
// iteration stops early; ScanStrings does it for single-column results.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()

	// Err returns the error, already classified, that ended iteration.
	Err() error
}

// Row is a single-row result.
type Row interface {
	Scan(dest ...any) error
}
