package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	planner "github.com/tidyplan/plannerd/internal"
)

const eventColumns = `id, date, time, event_title, duration_min, attendees, created_at, updated_at`

// CreateEvent inserts a new bookmarked event.
func (s *Store) CreateEvent(ctx context.Context, e *planner.BookmarkedEvent) error {
	attendees, err := marshalJSON(e.Attendees)
	if err != nil {
		return err
	}
	_, err = s.write.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Time, e.Title, e.Duration, attendees,
		timeToStr(e.CreatedAt), timeToStr(e.UpdatedAt),
	)
	return storeErr("create event", err)
}

// ListEvents returns bookmarked events matching the filter, newest first.
func (s *Store) ListEvents(ctx context.Context, f planner.Filter, page planner.Page) ([]*planner.BookmarkedEvent, error) {
	where, args := predicate(planner.ResourceEvents, f)
	args = append(args, page.Limit, page.Skip)

	rows, err := s.read.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...,
	)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	defer rows.Close()

	events := []*planner.BookmarkedEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, storeErr("list events", rows.Err())
}

// GetEvent retrieves a bookmarked event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*planner.BookmarkedEvent, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id,
	)
	return scanEvent(row)
}

// DeleteEvent removes a bookmarked event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.write.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete event", err)
	}
	return checkRowsAffected(result, "event")
}

func scanEvent(sc scanner) (*planner.BookmarkedEvent, error) {
	var e planner.BookmarkedEvent
	var attendees sql.NullString
	var createdAt, updatedAt string
	if err := sc.Scan(&e.ID, &e.Date, &e.Time, &e.Title, &e.Duration, &attendees, &createdAt, &updatedAt); err != nil {
		return nil, storeErr("scan event", err)
	}
	if attendees.String != "" {
		if err := json.Unmarshal([]byte(attendees.String), &e.Attendees); err != nil {
			return nil, fmt.Errorf("decode attendees: %w", err)
		}
	}
	var err error
	if e.CreatedAt, err = strToTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = strToTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
