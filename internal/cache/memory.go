package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// entry wraps a cached value with its expiration time.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-memory W-TinyLFU cache backed by otter. A mutex-guarded
// key registry tracks the otter key space so predicate invalidation and
// size accounting can walk it; otter itself bounds memory and handles
// eviction under pressure.
type Memory struct {
	mu    sync.Mutex
	keys  map[string]struct{}
	cache *otter.Cache[string, entry]
	now   func() time.Time
}

// NewMemory creates an in-memory cache with the given max entry count and
// backstop TTL. Entries carry their own TTL; the backstop only lets otter
// reclaim entries whose per-entry expiry was never observed by a read.
func NewMemory(maxSize int, backstopTTL time.Duration) (*Memory, error) {
	c, err := otter.New[string, entry](&otter.Options[string, entry]{
		MaximumSize:      maxSize,
		ExpiryCalculator: otter.ExpiryWriting[string, entry](backstopTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Memory{
		keys:  make(map[string]struct{}),
		cache: c,
		now:   time.Now,
	}, nil
}

// Get retrieves a value from the cache if present and not expired.
// An expired entry is treated as absent and evicted on the way out.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.cache.GetIfPresent(key)
	if !ok {
		delete(m.keys, key)
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.cache.Invalidate(key)
		delete(m.keys, key)
		return nil, false
	}
	return e.data, true
}

// Set stores a value with per-entry TTL, unconditionally replacing any
// prior entry. A zero or negative TTL means "never cache": the prior entry
// is dropped and nothing is stored.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl <= 0 {
		m.cache.Invalidate(key)
		delete(m.keys, key)
		return
	}
	m.cache.Set(key, entry{
		data:      val,
		expiresAt: m.now().Add(ttl),
	})
	m.keys[key] = struct{}{}
}

// Invalidate removes every entry whose key matches and returns the count
// of removed registry entries.
func (m *Memory) Invalidate(_ context.Context, match func(key string) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for key := range m.keys {
		if match(key) {
			m.cache.Invalidate(key)
			delete(m.keys, key)
			n++
		}
	}
	return n
}

// Clear removes all entries.
func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.InvalidateAll()
	m.keys = make(map[string]struct{})
}

// Size returns the number of live entries. Keys that otter evicted or whose
// TTL has lapsed are dropped from the registry as they are counted.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

// Sweep evicts expired entries eagerly, bounding memory between reads.
// It returns the number of live entries remaining.
func (m *Memory) Sweep(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

func (m *Memory) sweepLocked() int {
	now := m.now()
	var live int
	for key := range m.keys {
		e, ok := m.cache.GetIfPresent(key)
		if !ok {
			delete(m.keys, key)
			continue
		}
		if !now.Before(e.expiresAt) {
			m.cache.Invalidate(key)
			delete(m.keys, key)
			continue
		}
		live++
	}
	return live
}
