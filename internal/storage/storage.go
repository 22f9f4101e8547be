// Package storage defines persistence interfaces for plannerd.
package storage

import (
	"context"

	planner "github.com/tidyplan/plannerd/internal"
)

// TodoStore manages todo persistence. List receives the whole filter and
// must push it into the store's own query predicate; it never returns a
// superset for the caller to narrow.
type TodoStore interface {
	CreateTodo(ctx context.Context, t *planner.Todo) error
	ListTodos(ctx context.Context, f planner.Filter, page planner.Page) ([]*planner.Todo, error)
	GetTodo(ctx context.Context, id string) (*planner.Todo, error)
	UpdateTodo(ctx context.Context, id string, upd planner.TodoUpdate) (*planner.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	CountTodos(ctx context.Context, f planner.Filter) (int, error)
}

// HorizonStore manages horizon persistence.
type HorizonStore interface {
	CreateHorizon(ctx context.Context, h *planner.Horizon) error
	ListHorizons(ctx context.Context, f planner.Filter, page planner.Page) ([]*planner.Horizon, error)
	GetHorizon(ctx context.Context, id string) (*planner.Horizon, error)
	UpdateHorizon(ctx context.Context, id string, upd planner.HorizonUpdate) (*planner.Horizon, error)
	EditHorizons(ctx context.Context, edit planner.HorizonEdit) ([]*planner.Horizon, error)
	DeleteHorizon(ctx context.Context, id string) error
	DeleteHorizonsByTitle(ctx context.Context, title string) (int, error)
	CountHorizons(ctx context.Context, f planner.Filter) (int, error)
}

// EventStore manages bookmarked event persistence.
type EventStore interface {
	CreateEvent(ctx context.Context, e *planner.BookmarkedEvent) error
	ListEvents(ctx context.Context, f planner.Filter, page planner.Page) ([]*planner.BookmarkedEvent, error)
	GetEvent(ctx context.Context, id string) (*planner.BookmarkedEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// IndexManager declares the secondary indexes a store needs. EnsureIndexes
// is idempotent and must complete before traffic is admitted; a same-name
// index with a different shape is reported as planner.ErrIndexConflict.
type IndexManager interface {
	EnsureIndexes(ctx context.Context, specs []planner.IndexSpec) error
}

// Store combines all storage interfaces.
type Store interface {
	TodoStore
	HorizonStore
	EventStore
	IndexManager
	Ping(ctx context.Context) error
	Close() error
}
