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

// HorizonService serves filtered horizon lists through the cache
// coordinator and routes mutations to the store with synchronous
// invalidation.
type HorizonService struct {
	store storage.HorizonStore
	coord *Coordinator
	ttl   time.Duration
}

// NewHorizonService creates a HorizonService with the given list-result TTL.
func NewHorizonService(store storage.HorizonStore, coord *Coordinator, ttl time.Duration) *HorizonService {
	return &HorizonService{store: store, coord: coord, ttl: ttl}
}

// List returns horizons matching the filter, newest first.
func (s *HorizonService) List(ctx context.Context, f planner.Filter, page planner.Page, fresh bool) ([]*planner.Horizon, error) {
	if err := planner.ValidateFilter(planner.ResourceHorizons, f); err != nil {
		return nil, err
	}
	page = page.Normalize()

	key := CacheKey(planner.ResourceHorizons, f, page)
	data, err := s.coord.ReadThrough(ctx, planner.ResourceHorizons, key, s.ttl, fresh, func(ctx context.Context) ([]byte, error) {
		horizons, err := s.store.ListHorizons(ctx, f, page)
		if err != nil {
			return nil, err
		}
		return json.Marshal(horizons)
	})
	if err != nil {
		return nil, err
	}

	var horizons []*planner.Horizon
	if err := json.Unmarshal(data, &horizons); err != nil {
		return nil, fmt.Errorf("decode cached horizons: %w", err)
	}
	return horizons, nil
}

// Get returns a single horizon by ID, uncached.
func (s *HorizonService) Get(ctx context.Context, id string) (*planner.Horizon, error) {
	return s.store.GetHorizon(ctx, id)
}

// Create stores a new horizon and invalidates the horizon cache.
func (s *HorizonService) Create(ctx context.Context, c planner.HorizonCreate) (*planner.Horizon, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	typ := c.Type
	if typ == "" {
		typ = "none"
	}
	now := time.Now().UTC()
	horizon := &planner.Horizon{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Title:     c.Title,
		Details:   c.Details,
		Type:      typ,
		Date:      c.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateHorizon(ctx, horizon); err != nil {
		return nil, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceHorizons)
	return horizon, nil
}

// Update applies a partial mutation and invalidates the horizon cache.
func (s *HorizonService) Update(ctx context.Context, id string, upd planner.HorizonUpdate) (*planner.Horizon, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", planner.ErrInvalidInput)
	}
	if upd.Date != nil && *upd.Date != "" {
		if err := planner.ValidateDate(*upd.Date); err != nil {
			return nil, fmt.Errorf("%w: bad horizon_date %q", planner.ErrInvalidInput, *upd.Date)
		}
	}

	horizon, err := s.store.UpdateHorizon(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceHorizons)
	return horizon, nil
}

// Edit updates every horizon matching the edit's criteria and invalidates
// the horizon cache. At least one criterion and one new value are required.
func (s *HorizonService) Edit(ctx context.Context, edit planner.HorizonEdit) ([]*planner.Horizon, error) {
	if !edit.HasCriteria() {
		return nil, fmt.Errorf("%w: at least one existing_* criterion is required", planner.ErrInvalidInput)
	}
	if !edit.HasChanges() {
		return nil, fmt.Errorf("%w: at least one new_* value is required", planner.ErrInvalidInput)
	}
	if edit.NewDate != nil && *edit.NewDate != "" {
		if err := planner.ValidateDate(*edit.NewDate); err != nil {
			return nil, fmt.Errorf("%w: bad new_horizon_date %q", planner.ErrInvalidInput, *edit.NewDate)
		}
	}

	edited, err := s.store.EditHorizons(ctx, edit)
	if err != nil {
		return nil, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceHorizons)
	return edited, nil
}

// Delete removes a horizon and invalidates the horizon cache.
func (s *HorizonService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteHorizon(ctx, id); err != nil {
		return err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceHorizons)
	return nil
}

// DeleteByTitle removes every horizon with the given title, invalidates the
// horizon cache, and returns the number removed.
func (s *HorizonService) DeleteByTitle(ctx context.Context, title string) (int, error) {
	if title == "" {
		return 0, fmt.Errorf("%w: title is required", planner.ErrInvalidInput)
	}
	n, err := s.store.DeleteHorizonsByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	s.coord.InvalidateResource(ctx, planner.ResourceHorizons)
	return n, nil
}

// Count returns the number of horizons matching the filter, uncached.
func (s *HorizonService) Count(ctx context.Context, f planner.Filter) (int, error) {
	if err := planner.ValidateFilter(planner.ResourceHorizons, f); err != nil {
		return 0, err
	}
	return s.store.CountHorizons(ctx, f)
}
