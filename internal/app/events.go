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

// EventService serves bookmarked events through the cache coordinator.
type EventService struct {
	store storage.EventStore
	coord *Coordinator
	ttl   time.Duration
}

// NewEventService creates an EventService with the given list-result TTL.
func NewEventService(store storage.EventStore, coord *Coordinator, ttl time.Duration) *EventService {
	return &EventService{store: store, coord: coord, ttl: ttl}
}

// List returns bookmarked events matching the filter, newest first.
func (s *EventService) List(ctx context.Context, f planner.Filter, page planner.Page, fresh bool) ([]*planner.BookmarkedEvent, error) {
	if err := planner.ValidateFilter(planner.ResourceEvents, f); err != nil {
		return nil, err
	}
	page = page.Normalize()

	key := CacheKey(planner.ResourceEvents, f, page)
	data, err := s.coord.ReadThrough(ctx, planner.ResourceEvents, key, s.ttl, fresh, func(ctx context.Context) ([]byte, error) {
		events, err := s.store.ListEvents(ctx, f, page)
		if err != nil {
			return nil, err
		}
		return json.Marshal(events)
	})
	if err != nil {
		return nil, err
	}

	var events []*planner.BookmarkedEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode cached events: %w", err)
	}
	return events, nil
}

// Get returns a single bookmarked event by ID, uncached.
func (s *EventService) Get(ctx context.Context, id string) (*planner.BookmarkedEvent, error) {
	return s.store.GetEvent(ctx, id)
}

// Create stores a new bookmarked event and invalidates the event cache.
func (s *EventService) Create(ctx context.Context, c planner.EventCreate) (*planner.BookmarkedEvent, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	event := &planner.BookmarkedEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Date:      c.Date,
		Time:      c.Time,
		Title:     c.Title,
		Duration:  c.Duration,
		Attendees: c.Attendees,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceEvents)
	return event, nil
}

// Delete removes a bookmarked event and invalidates the event cache.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceEvents)
	return nil
}
