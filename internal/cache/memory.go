package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache. Expired entries are dropped lazily
// on Get. A zero TTL keeps the entry until Close, as it does in Redis.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	config  Config
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache(cfg Config) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		config:  cfg,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[m.config.Prefix+key]
	if !ok {
		return nil, miss(key)
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, m.config.Prefix+key)
		return nil, miss(key)
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.config.Prefix+key] = e
	return nil
}

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	return nil
}
