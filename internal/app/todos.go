package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	planner "github.com/tidyplan/plannerd/internal"
	"github.com/tidyplan/plannerd/internal/storage"
)

// TodoService serves filtered todo lists through the cache coordinator and
// routes mutations to the store with synchronous invalidation.
type TodoService struct {
	store storage.TodoStore
	coord *Coordinator
	ttl   time.Duration
}

// NewTodoService creates a TodoService with the given list-result TTL.
func NewTodoService(store storage.TodoStore, coord *Coordinator, ttl time.Duration) *TodoService {
	return &TodoService{store: store, coord: coord, ttl: ttl}
}

// List returns todos matching the filter, newest first. The filter is
// validated before any store call; fresh=true bypasses the cache check.
func (s *TodoService) List(ctx context.Context, f planner.Filter, page planner.Page, fresh bool) ([]*planner.Todo, error) {
	if err := planner.ValidateFilter(planner.ResourceTodos, f); err != nil {
		return nil, err
	}
	page = page.Normalize()

	key := CacheKey(planner.ResourceTodos, f, page)
	data, err := s.coord.ReadThrough(ctx, planner.ResourceTodos, key, s.ttl, fresh, func(ctx context.Context) ([]byte, error) {
		todos, err := s.store.ListTodos(ctx, f, page)
		if err != nil {
			return nil, err
		}
		return json.Marshal(todos)
	})
	if err != nil {
		return nil, err
	}

	var todos []*planner.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("decode cached todos: %w", err)
	}
	return todos, nil
}

// Get returns a single todo by ID, uncached.
func (s *TodoService) Get(ctx context.Context, id string) (*planner.Todo, error) {
	return s.store.GetTodo(ctx, id)
}

// Create stores a new todo and invalidates the todo cache.
func (s *TodoService) Create(ctx context.Context, c planner.TodoCreate) (*planner.Todo, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	todo := &planner.Todo{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Title:     c.Title,
		Urgency:   c.Urgency,
		Priority:  c.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceTodos)
	return todo, nil
}

// Update applies a partial mutation and invalidates the todo cache.
func (s *TodoService) Update(ctx context.Context, id string, upd planner.TodoUpdate) (*planner.Todo, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", planner.ErrInvalidInput)
	}
	if upd.Urgency != nil && !upd.Urgency.Valid() {
		return nil, fmt.Errorf("%w: bad urgency %q", planner.ErrInvalidInput, *upd.Urgency)
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return nil, fmt.Errorf("%w: bad priority %q", planner.ErrInvalidInput, *upd.Priority)
	}
	if upd.Title != nil && (*upd.Title == "" || len(*upd.Title) > 200) {
		return nil, fmt.Errorf("%w: title must be 1-200 characters", planner.ErrInvalidInput)
	}

	todo, err := s.store.UpdateTodo(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceTodos)
	return todo, nil
}

// Delete removes a todo and invalidates the todo cache.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceTodos)
	return nil
}

// Count returns the number of todos matching the filter, uncached.
func (s *TodoService) Count(ctx context.Context, f planner.Filter) (int, error) {
	if err := planner.ValidateFilter(planner.ResourceTodos, f); err != nil {
		return 0, err
	}
	return s.store.CountTodos(ctx, f)
}
