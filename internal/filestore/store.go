// Package filestore publishes generated files to S3-compatible object
// storage, so a CI job can push db.ts to a bucket that front-end builds
// pull from.
//
// Usage:
//
//	store, err := minio.New(ctx, filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin"))
//	if err != nil { ... }
//	defer store.Close()
//
//	loc, _ := filestore.ParseLocation("s3://types/db.ts")
//	info, err := store.Put(ctx, loc, out, "application/typescript")
package filestore

import (
	"context"
	"time"
)

// Store reads and writes whole generated files.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// Put replaces the object at loc with data. The bucket must exist.
	Put(ctx context.Context, loc Location, data []byte, contentType string) (*ObjectInfo, error)

	// Get returns the content of the object at loc. A missing object or
	// bucket yields an ErrKindNotFound error.
	Get(ctx context.Context, loc Location) ([]byte, *ObjectInfo, error)
}

// ObjectInfo describes a stored file.
type ObjectInfo struct {
	Location     Location
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}
