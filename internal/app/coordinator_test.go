package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	planner "github.com/tidyplan/plannerd/internal"
	"github.com/tidyplan/plannerd/internal/cache"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	mem, err := cache.NewMemory(1000, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return NewCoordinator(mem, nil)
}

func TestReadThroughMissThenHit(t *testing.T) {
	t.Parallel()
	coord := newTestCoordinator(t)
	ctx := context.Background()

	var fetches atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		fetches.Add(1)
		return []byte(`["r1","r2"]`), nil
	}

	data, err := coord.ReadThrough(ctx, planner.ResourceTodos, "todos?limit=100&skip=0", time.Minute, false, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["r1","r2"]` {
		t.Errorf("data = %s", data)
	}
	if fetches.Load() != 1 {
		t.Fatalf("fetches = %d, want 1", fetches.Load())
	}

	// otter applies Set asynchronously; give it a beat before the hit check.
	time.Sleep(50 * time.Millisecond)

	if _, err := coord.ReadThrough(ctx, planner.ResourceTodos, "todos?limit=100&skip=0", time.Minute, false, fetch); err != nil {
		t.Fatal(err)
	}
	if fetches.Load() != 1 {
		t.Errorf("fetches after hit = %d, want 1", fetches.Load())
	}
}

func TestReadThroughErrorNotCached(t *testing.T) {
	t.Parallel()
	coord := newTestCoordinator(t)
	ctx := context.Background()

	boom := fmt.Errorf("list todos: %w: connection refused", planner.ErrStoreUnavailable)
	var fetches atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		fetches.Add(1)
		return nil, boom
	}

	_, err := coord.ReadThrough(ctx, planner.ResourceTodos, "k", time.Minute, false, fetch)
	if !errors.Is(err, planner.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}

	// The failure must not have populated the cache: the next read fetches again.
	time.Sleep(50 * time.Millisecond)
	if _, err := coord.ReadThrough(ctx, planner.ResourceTodos, "k", time.Minute, false, fetch); !errors.Is(err, planner.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2", fetches.Load())
	}
}

func TestReadThroughForceFresh(t *testing.T) {
	t.Parallel()
	coord := newTestCoordinator(t)
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) ([]byte, error) {
		calls++
		return []byte(fmt.Sprintf("[%d]", calls)), nil
	}

	if _, err := coord.ReadThrough(ctx, planner.ResourceTodos, "k", time.Minute, false, fetch); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	// Force-fresh skips the cache check but still refreshes the entry.
	data, err := coord.ReadThrough(ctx, planner.ResourceTodos, "k", time.Minute, true, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[2]" {
		t.Errorf("force-fresh data = %s, want [2]", data)
	}
	time.Sleep(50 * time.Millisecond)

	// The refreshed value is now served from cache.
	data, err = coord.ReadThrough(ctx, planner.ResourceTodos, "k", time.Minute, false, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[2]" {
		t.Errorf("cached data = %s, want [2]", data)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestInvalidateResourceCompleteAndScoped(t *testing.T) {
	t.Parallel()
	coord := newTestCoordinator(t)
	ctx := context.Background()

	fetch := func(data string) FetchFunc {
		return func(context.Context) ([]byte, error) { return []byte(data), nil }
	}

	// Two different filter combinations of the same resource, plus one
	// entry of another resource.
	k1 := CacheKey(planner.ResourceTodos, planner.Filter{planner.FieldUrgency: "high"}, planner.Page{Limit: 100})
	k2 := CacheKey(planner.ResourceTodos, planner.Filter{planner.FieldPriority: "low"}, planner.Page{Limit: 100})
	k3 := CacheKey(planner.ResourceHorizons, nil, planner.Page{Limit: 100})
	for key, d := range map[string]string{k1: "[1]", k2: "[2]", k3: "[3]"} {
		if _, err := coord.ReadThrough(ctx, planner.ResourceTodos, key, time.Minute, false, fetch(d)); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(50 * time.Millisecond)

	if n := coord.InvalidateResource(ctx, planner.ResourceTodos); n != 2 {
		t.Errorf("invalidated = %d, want 2", n)
	}

	// Both todo entries are gone; a re-read fetches.
	var fetches atomic.Int32
	counting := func(context.Context) ([]byte, error) {
		fetches.Add(1)
		return []byte("[]"), nil
	}
	for _, key := range []string{k1, k2} {
		if _, err := coord.ReadThrough(ctx, planner.ResourceTodos, key, time.Minute, false, counting); err != nil {
			t.Fatal(err)
		}
	}
	if fetches.Load() != 2 {
		t.Errorf("fetches after invalidation = %d, want 2", fetches.Load())
	}

	// The horizons entry survived.
	if _, err := coord.ReadThrough(ctx, planner.ResourceHorizons, k3, time.Minute, false, counting); err != nil {
		t.Fatal(err)
	}
	if fetches.Load() != 2 {
		t.Errorf("horizons entry was invalidated too")
	}
}

func TestReadThroughSingleFlight(t *testing.T) {
	t.Parallel()
	coord := newTestCoordinator(t)
	ctx := context.Background()

	var fetches atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) ([]byte, error) {
		fetches.Add(1)
		<-release
		return []byte("[]"), nil
	}

	const goroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := coord.ReadThrough(ctx, planner.ResourceTodos, "k", time.Minute, false, fetch); err != nil {
				t.Error(err)
			}
		}()
	}

	// Let all goroutines pile up on the miss, then release the one fetch.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if fetches.Load() != 1 {
		t.Errorf("fetches = %d, want 1 (concurrent misses must share a fetch)", fetches.Load())
	}
}
