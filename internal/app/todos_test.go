package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	planner "github.com/tidyplan/plannerd/internal"
	"github.com/tidyplan/plannerd/internal/cache"
	"github.com/tidyplan/plannerd/internal/testutil"
)

func newTodoFixture(t *testing.T, ttl time.Duration) (*TodoService, *testutil.FakeStore) {
	t.Helper()
	mem, err := cache.NewMemory(1000, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	store := testutil.NewFakeStore()
	return NewTodoService(store, NewCoordinator(mem, nil), ttl), store
}

func seedTodo(t *testing.T, store *testutil.FakeStore, title string, urgency, priority planner.Level) {
	t.Helper()
	err := store.CreateTodo(context.Background(), &planner.Todo{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Title:     title,
		Urgency:   urgency,
		Priority:  priority,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestTodoListPushesFilterDown(t *testing.T) {
	t.Parallel()
	svc, store := newTodoFixture(t, time.Minute)
	ctx := context.Background()

	seedTodo(t, store, "a", planner.LevelHigh, planner.LevelHigh)
	seedTodo(t, store, "b", planner.LevelLow, planner.LevelLow)

	filter := planner.Filter{planner.FieldUrgency: "high", planner.FieldPriority: "high"}
	todos, err := svc.List(ctx, filter, planner.Page{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 1 || todos[0].Title != "a" {
		t.Fatalf("todos = %v", todos)
	}

	// Exactly one store call, carrying every present field. A broader
	// predicate (an empty filter) would mean post-filtering in memory.
	if n := store.ListCallCount(planner.ResourceTodos); n != 1 {
		t.Fatalf("store calls = %d, want 1", n)
	}
	got := store.LastListFilter(planner.ResourceTodos)
	if got[planner.FieldUrgency] != "high" || got[planner.FieldPriority] != "high" {
		t.Errorf("store received filter %v, want both fields pushed down", got)
	}
	if len(got) != 2 {
		t.Errorf("store received %d filter fields, want 2", len(got))
	}
}

func TestTodoListInvalidFilterBeforeStore(t *testing.T) {
	t.Parallel()
	svc, store := newTodoFixture(t, time.Minute)
	ctx := context.Background()

	_, err := svc.List(ctx, planner.Filter{planner.FieldUrgency: "urgent"}, planner.Page{}, false)
	if !errors.Is(err, planner.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
	if n := store.ListCallCount(planner.ResourceTodos); n != 0 {
		t.Errorf("store calls = %d, want 0 (reject before store)", n)
	}
}

func TestTodoListCachesResult(t *testing.T) {
	t.Parallel()
	svc, store := newTodoFixture(t, time.Minute)
	ctx := context.Background()

	seedTodo(t, store, "a", planner.LevelHigh, planner.LevelLow)

	if _, err := svc.List(ctx, nil, planner.Page{}, false); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := svc.List(ctx, nil, planner.Page{}, false); err != nil {
		t.Fatal(err)
	}
	if n := store.ListCallCount(planner.ResourceTodos); n != 1 {
		t.Errorf("store calls = %d, want 1 (second read served from cache)", n)
	}

	// Force-fresh bypasses the cache check.
	if _, err := svc.List(ctx, nil, planner.Page{}, true); err != nil {
		t.Fatal(err)
	}
	if n := store.ListCallCount(planner.ResourceTodos); n != 2 {
		t.Errorf("store calls = %d, want 2 after force-fresh", n)
	}
}

func TestTodoMutationsInvalidateEveryFilterCombination(t *testing.T) {
	t.Parallel()
	svc, store := newTodoFixture(t, time.Minute)
	ctx := context.Background()

	seedTodo(t, store, "a", planner.LevelHigh, planner.LevelLow)

	// Warm two distinct filter combinations.
	if _, err := svc.List(ctx, planner.Filter{planner.FieldUrgency: "high"}, planner.Page{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.List(ctx, planner.Filter{planner.FieldPriority: "low"}, planner.Page{}, false); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if n := store.ListCallCount(planner.ResourceTodos); n != 2 {
		t.Fatalf("store calls = %d, want 2", n)
	}

	// A mutation invalidates both combinations before returning.
	created, err := svc.Create(ctx, planner.TodoCreate{Title: "new", Urgency: planner.LevelHigh, Priority: planner.LevelHigh})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Error("created todo has no ID")
	}

	if _, err := svc.List(ctx, planner.Filter{planner.FieldUrgency: "high"}, planner.Page{}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.List(ctx, planner.Filter{planner.FieldPriority: "low"}, planner.Page{}, false); err != nil {
		t.Fatal(err)
	}
	if n := store.ListCallCount(planner.ResourceTodos); n != 4 {
		t.Errorf("store calls = %d, want 4 (both entries refetched after mutation)", n)
	}
}

func TestTodoStoreFailureNotCached(t *testing.T) {
	t.Parallel()
	svc, store := newTodoFixture(t, time.Minute)
	ctx := context.Background()

	store.Err = planner.ErrStoreUnavailable
	if _, err := svc.List(ctx, nil, planner.Page{}, false); !errors.Is(err, planner.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}

	// Once the store recovers, the next read fetches instead of serving a
	// cached failure.
	store.Err = nil
	seedTodo(t, store, "a", planner.LevelHigh, planner.LevelLow)
	todos, err := svc.List(ctx, nil, planner.Page{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(todos) != 1 {
		t.Errorf("todos = %d, want 1", len(todos))
	}
}

func TestTodoZeroTTLNeverServesCached(t *testing.T) {
	t.Parallel()
	svc, store := newTodoFixture(t, 0)
	ctx := context.Background()

	seedTodo(t, store, "a", planner.LevelHigh, planner.LevelLow)

	for i := 0; i < 3; i++ {
		if _, err := svc.List(ctx, nil, planner.Page{}, false); err != nil {
			t.Fatal(err)
		}
	}
	if n := store.ListCallCount(planner.ResourceTodos); n != 3 {
		t.Errorf("store calls = %d, want 3 (zero TTL disables caching)", n)
	}
}

func TestTodoUpdateValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTodoFixture(t, time.Minute)
	ctx := context.Background()

	if _, err := svc.Update(ctx, "id", planner.TodoUpdate{}); !errors.Is(err, planner.ErrInvalidInput) {
		t.Errorf("empty update = %v, want ErrInvalidInput", err)
	}

	bad := planner.Level("medium")
	if _, err := svc.Update(ctx, "id", planner.TodoUpdate{Urgency: &bad}); !errors.Is(err, planner.ErrInvalidInput) {
		t.Errorf("bad urgency = %v, want ErrInvalidInput", err)
	}
}
