// Package testutil provides in-memory fakes for testing.
package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	planner "github.com/tidyplan/plannerd/internal"
)

// FakeStore is an in-memory implementation of storage.Store for testing.
// It records every list call's filter so tests can assert that filters are
// pushed down to the store instead of being applied by the caller.
type FakeStore struct {
	mu       sync.RWMutex
	todos    map[string]*planner.Todo
	horizons map[string]*planner.Horizon
	events   map[string]*planner.BookmarkedEvent
	indexes  map[string]planner.IndexSpec

	// ListCalls records the filter of every list query, per resource type.
	ListCalls map[planner.ResourceType][]planner.Filter
	// EnsureCalls counts EnsureIndexes invocations.
	EnsureCalls int
	// Err, when set, makes every store operation fail with it.
	Err error
}

// NewFakeStore returns a FakeStore with empty collections.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		todos:     make(map[string]*planner.Todo),
		horizons:  make(map[string]*planner.Horizon),
		events:    make(map[string]*planner.BookmarkedEvent),
		indexes:   make(map[string]planner.IndexSpec),
		ListCalls: make(map[planner.ResourceType][]planner.Filter),
	}
}

func (s *FakeStore) recordList(rt planner.ResourceType, f planner.Filter) {
	// Copy so later caller mutation cannot rewrite history.
	cp := make(planner.Filter, len(f))
	for k, v := range f {
		cp[k] = v
	}
	s.ListCalls[rt] = append(s.ListCalls[rt], cp)
}

// LastListFilter returns the most recent filter recorded for rt, or nil.
func (s *FakeStore) LastListFilter(rt planner.ResourceType) planner.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	calls := s.ListCalls[rt]
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

// ListCallCount returns the number of list queries recorded for rt.
func (s *FakeStore) ListCallCount(rt planner.ResourceType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ListCalls[rt])
}

// --- TodoStore ---

func (s *FakeStore) CreateTodo(_ context.Context, t *planner.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.todos[t.ID] = t
	return nil
}

func (s *FakeStore) ListTodos(_ context.Context, f planner.Filter, page planner.Page) ([]*planner.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordList(planner.ResourceTodos, f)
	if s.Err != nil {
		return nil, s.Err
	}

	matched := []*planner.Todo{}
	for _, t := range s.todos {
		if v, ok := f[planner.FieldUrgency]; ok && string(t.Urgency) != v {
			continue
		}
		if v, ok := f[planner.FieldPriority]; ok && string(t.Priority) != v {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, page), nil
}

func (s *FakeStore) GetTodo(_ context.Context, id string) (*planner.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.todos[id]
	if !ok {
		return nil, planner.ErrNotFound
	}
	return t, nil
}

func (s *FakeStore) UpdateTodo(_ context.Context, id string, upd planner.TodoUpdate) (*planner.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.todos[id]
	if !ok {
		return nil, planner.ErrNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Urgency != nil {
		t.Urgency = *upd.Urgency
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	return t, nil
}

func (s *FakeStore) DeleteTodo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.todos[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *FakeStore) CountTodos(_ context.Context, f planner.Filter) (int, error) {
	todos, err := s.ListTodos(context.Background(), f, planner.Page{Limit: 1 << 30})
	return len(todos), err
}

// --- HorizonStore ---

func (s *FakeStore) CreateHorizon(_ context.Context, h *planner.Horizon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.horizons[h.ID] = h
	return nil
}

func (s *FakeStore) ListHorizons(_ context.Context, f planner.Filter, page planner.Page) ([]*planner.Horizon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordList(planner.ResourceHorizons, f)
	if s.Err != nil {
		return nil, s.Err
	}

	matched := []*planner.Horizon{}
	for _, h := range s.horizons {
		if v, ok := f[planner.FieldDate]; ok && h.Date != v {
			continue
		}
		if v, ok := f[planner.FieldType]; ok && h.Type != v {
			continue
		}
		if v, ok := f[planner.FieldTitle]; ok && h.Title != v {
			continue
		}
		matched = append(matched, h)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, page), nil
}

func (s *FakeStore) GetHorizon(_ context.Context, id string) (*planner.Horizon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	h, ok := s.horizons[id]
	if !ok {
		return nil, planner.ErrNotFound
	}
	return h, nil
}

func (s *FakeStore) UpdateHorizon(_ context.Context, id string, upd planner.HorizonUpdate) (*planner.Horizon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	h, ok := s.horizons[id]
	if !ok {
		return nil, planner.ErrNotFound
	}
	if upd.Title != nil {
		h.Title = *upd.Title
	}
	if upd.Details != nil {
		h.Details = *upd.Details
	}
	if upd.Type != nil {
		h.Type = *upd.Type
	}
	if upd.Date != nil {
		h.Date = *upd.Date
	}
	return h, nil
}

func (s *FakeStore) EditHorizons(_ context.Context, edit planner.HorizonEdit) ([]*planner.Horizon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var edited []*planner.Horizon
	for _, h := range s.horizons {
		if edit.ExistingTitle != nil && h.Title != *edit.ExistingTitle {
			continue
		}
		if edit.ExistingDetails != nil && h.Details != *edit.ExistingDetails {
			continue
		}
		if edit.ExistingType != nil && h.Type != *edit.ExistingType {
			continue
		}
		if edit.ExistingDate != nil && h.Date != *edit.ExistingDate {
			continue
		}
		if edit.NewTitle != nil {
			h.Title = *edit.NewTitle
		}
		if edit.NewDetails != nil {
			h.Details = *edit.NewDetails
		}
		if edit.NewType != nil {
			h.Type = *edit.NewType
		}
		if edit.NewDate != nil {
			h.Date = *edit.NewDate
		}
		edited = append(edited, h)
	}
	return edited, nil
}

func (s *FakeStore) DeleteHorizon(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.horizons[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.horizons, id)
	return nil
}

func (s *FakeStore) DeleteHorizonsByTitle(_ context.Context, title string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int
	for id, h := range s.horizons {
		if h.Title == title {
			delete(s.horizons, id)
			n++
		}
	}
	return n, nil
}

func (s *FakeStore) CountHorizons(_ context.Context, f planner.Filter) (int, error) {
	horizons, err := s.ListHorizons(context.Background(), f, planner.Page{Limit: 1 << 30})
	return len(horizons), err
}

// --- EventStore ---

func (s *FakeStore) CreateEvent(_ context.Context, e *planner.BookmarkedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.events[e.ID] = e
	return nil
}

func (s *FakeStore) ListEvents(_ context.Context, f planner.Filter, page planner.Page) ([]*planner.BookmarkedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordList(planner.ResourceEvents, f)
	if s.Err != nil {
		return nil, s.Err
	}

	matched := []*planner.BookmarkedEvent{}
	for _, e := range s.events {
		if v, ok := f[planner.FieldEvtDate]; ok && e.Date != v {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, page), nil
}

func (s *FakeStore) GetEvent(_ context.Context, id string) (*planner.BookmarkedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, planner.ErrNotFound
	}
	return e, nil
}

func (s *FakeStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.events[id]; !ok {
		return planner.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// --- IndexManager ---

func (s *FakeStore) EnsureIndexes(_ context.Context, specs []planner.IndexSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EnsureCalls++
	if s.Err != nil {
		return s.Err
	}
	for _, spec := range specs {
		if have, ok := s.indexes[spec.Name]; ok {
			if !reflect.DeepEqual(have, spec) {
				return fmt.Errorf("%w: index %s", planner.ErrIndexConflict, spec.Name)
			}
			continue
		}
		s.indexes[spec.Name] = spec
	}
	return nil
}

func (s *FakeStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Err
}

func (s *FakeStore) Close() error { return nil }

func paginate[T any](items []T, page planner.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
