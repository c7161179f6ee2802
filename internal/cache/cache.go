// Package cache stores rendered schema files between requests of the HTTP
// server. Redis backs shared deployments; Memory serves a single process.
package cache

import (
	"context"
	"time"

	"github.com/koustreak/schemats/internal/errs"
)

// Cache is implemented by every backend.
type Cache interface {
	// Get returns the value stored at key, or an ErrKindNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key for ttl. Zero ttl selects the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases backend resources.
	Close() error
}

// Config holds settings shared by the backends.
type Config struct {
	// DefaultTTL applies when Set is called with a zero ttl.
	DefaultTTL time.Duration

	// Prefix is prepended to every key.
	Prefix string
}

// DefaultConfig returns a five-minute TTL under the "schemats:" prefix.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "schemats:",
	}
}

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errs.IsNotFound(err)
}

func miss(key string) error {
	return errs.New(errs.ErrKindNotFound, "cache miss: "+key)
}
