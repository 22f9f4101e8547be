// Package planner defines domain types for the plannerd service.
// This package has no project imports -- it is the dependency root.
package planner

import (
	"context"
	"fmt"
	"time"
)

// ResourceType identifies a cached, filterable collection.
type ResourceType string

const (
	ResourceTodos    ResourceType = "todos"
	ResourceHorizons ResourceType = "horizons"
	ResourceEvents   ResourceType = "events"
)

// Level is an urgency or priority value for a todo.
type Level string

const (
	LevelHigh Level = "high"
	LevelLow  Level = "low"
)

// Valid reports whether the level is a recognized value.
func (l Level) Valid() bool {
	return l == LevelHigh || l == LevelLow
}

// Todo is a single todo item.
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Urgency   Level     `json:"urgency"`
	Priority  Level     `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Horizon is a long-range planning note, optionally pinned to a date.
type Horizon struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	Type      string    `json:"type"`
	Date      string    `json:"horizon_date,omitempty"` // YYYY-MM-DD, empty = undated
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookmarkedEvent is a calendar event the user pinned for later.
type BookmarkedEvent struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time"` // display string, e.g. "2:30 PM - 3:30 PM"
	Title     string    `json:"event_title"`
	Duration  int       `json:"duration"` // minutes
	Attendees []string  `json:"attendees"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoUpdate carries a partial todo mutation. Nil fields are left unchanged.
type TodoUpdate struct {
	Title    *string
	Urgency  *Level
	Priority *Level
}

// Empty reports whether the update changes nothing.
func (u TodoUpdate) Empty() bool {
	return u.Title == nil && u.Urgency == nil && u.Priority == nil
}

// HorizonUpdate carries a partial horizon mutation. Nil fields are left unchanged.
type HorizonUpdate struct {
	Title   *string
	Details *string
	Type    *string
	Date    *string
}

// Empty reports whether the update changes nothing.
func (u HorizonUpdate) Empty() bool {
	return u.Title == nil && u.Details == nil && u.Type == nil && u.Date == nil
}

// HorizonEdit matches horizons by their current field values and applies
// new values to every match. Nil criteria impose no constraint; nil new
// values leave the field unchanged.
type HorizonEdit struct {
	ExistingTitle   *string
	ExistingDetails *string
	ExistingType    *string
	ExistingDate    *string

	NewTitle   *string
	NewDetails *string
	NewType    *string
	NewDate    *string
}

// HasCriteria reports whether at least one match criterion is set.
func (e HorizonEdit) HasCriteria() bool {
	return e.ExistingTitle != nil || e.ExistingDetails != nil ||
		e.ExistingType != nil || e.ExistingDate != nil
}

// HasChanges reports whether at least one new value is set.
func (e HorizonEdit) HasChanges() bool {
	return e.NewTitle != nil || e.NewDetails != nil ||
		e.NewType != nil || e.NewDate != nil
}

// Page bounds a list query.
type Page struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

// Normalize clamps the page to sane bounds: limit defaults to 100,
// caps at 500, and skip is never negative.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}

// ValidateDate checks a YYYY-MM-DD date string used as a filter value.
func ValidateDate(s string) error {
	if !isDate(s) {
		return fmt.Errorf("%w: bad date %q (want YYYY-MM-DD)", ErrInvalidFilter, s)
	}
	return nil
}

func isDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ctxKeyMeta is the single context key for per-request metadata.
type ctxKey int

const ctxKeyMeta ctxKey = 0

// requestMeta bundles per-request values into a single context allocation.
type requestMeta struct {
	RequestID string
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if m, _ := ctx.Value(ctxKeyMeta).(*requestMeta); m != nil {
		return m.RequestID
	}
	return ""
}

// ContextWithRequestID returns a context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyMeta, &requestMeta{RequestID: id})
}
