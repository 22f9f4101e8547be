// Package cache provides the TTL-bounded result cache for plannerd.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for query result caching.
type Cache interface {
	// Get retrieves a cached value by key if present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the given TTL, replacing any prior entry.
	// A zero or negative TTL expires the entry immediately.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	// Invalidate removes every entry whose key matches. It returns the
	// number of entries removed.
	Invalidate(ctx context.Context, match func(key string) bool) int
	// Clear removes all entries.
	Clear(ctx context.Context)
	// Size returns a best-effort count of live entries.
	Size() int
}
