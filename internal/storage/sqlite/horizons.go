package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	planner "github.com/tidyplan/plannerd/internal"
)

const horizonColumns = `id, title, details, type, horizon_date, created_at, updated_at`

// CreateHorizon inserts a new horizon item.
func (s *Store) CreateHorizon(ctx context.Context, h *planner.Horizon) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO horizons (`+horizonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Title, h.Details, h.Type, h.Date,
		timeToStr(h.CreatedAt), timeToStr(h.UpdatedAt),
	)
	return storeErr("create horizon", err)
}

// ListHorizons returns horizons matching the filter, newest first.
func (s *Store) ListHorizons(ctx context.Context, f planner.Filter, page planner.Page) ([]*planner.Horizon, error) {
	where, args := predicate(planner.ResourceHorizons, f)
	args = append(args, page.Limit, page.Skip)

	rows, err := s.read.QueryContext(ctx,
		`SELECT `+horizonColumns+` FROM horizons`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...,
	)
	if err != nil {
		return nil, storeErr("list horizons", err)
	}
	defer rows.Close()

	horizons := []*planner.Horizon{}
	for rows.Next() {
		h, err := scanHorizon(rows)
		if err != nil {
			return nil, err
		}
		horizons = append(horizons, h)
	}
	return horizons, storeErr("list horizons", rows.Err())
}

// GetHorizon retrieves a horizon by ID.
func (s *Store) GetHorizon(ctx context.Context, id string) (*planner.Horizon, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+horizonColumns+` FROM horizons WHERE id = ?`, id,
	)
	return scanHorizon(row)
}

// UpdateHorizon applies the non-nil fields of upd and returns the new row.
func (s *Store) UpdateHorizon(ctx context.Context, id string, upd planner.HorizonUpdate) (*planner.Horizon, error) {
	sets := []string{"updated_at = ?"}
	args := []any{timeToStr(time.Now())}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Details != nil {
		sets = append(sets, "details = ?")
		args = append(args, *upd.Details)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *upd.Type)
	}
	if upd.Date != nil {
		sets = append(sets, "horizon_date = ?")
		args = append(args, *upd.Date)
	}
	args = append(args, id)

	result, err := s.write.ExecContext(ctx,
		`UPDATE horizons SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, storeErr("update horizon", err)
	}
	if err := checkRowsAffected(result, "horizon"); err != nil {
		return nil, err
	}
	return s.GetHorizon(ctx, id)
}

// EditHorizons updates every horizon matching the edit's criteria and
// returns the rows as they stand after the update, newest first.
func (s *Store) EditHorizons(ctx context.Context, edit planner.HorizonEdit) ([]*planner.Horizon, error) {
	var conds []string
	var condArgs []any
	for _, c := range []struct {
		col string
		val *string
	}{
		{"title", edit.ExistingTitle},
		{"details", edit.ExistingDetails},
		{"type", edit.ExistingType},
		{"horizon_date", edit.ExistingDate},
	} {
		if c.val != nil {
			conds = append(conds, c.col+" = ?")
			condArgs = append(condArgs, *c.val)
		}
	}
	if len(conds) == 0 {
		return nil, fmt.Errorf("edit horizons: %w: no criteria", planner.ErrInvalidInput)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("edit horizons", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM horizons`+where, condArgs...)
	if err != nil {
		return nil, storeErr("edit horizons", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, storeErr("edit horizons", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr("edit horizons", err)
	}
	if len(ids) == 0 {
		return []*planner.Horizon{}, tx.Commit()
	}

	sets := []string{"updated_at = ?"}
	args := []any{timeToStr(time.Now())}
	for _, c := range []struct {
		col string
		val *string
	}{
		{"title", edit.NewTitle},
		{"details", edit.NewDetails},
		{"type", edit.NewType},
		{"horizon_date", edit.NewDate},
	} {
		if c.val != nil {
			sets = append(sets, c.col+" = ?")
			args = append(args, *c.val)
		}
	}
	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE horizons SET `+strings.Join(sets, ", ")+
			` WHERE id IN (`+placeholders+`)`, args...,
	); err != nil {
		return nil, storeErr("edit horizons", err)
	}

	idArgs := make([]any, len(ids))
	for i, id := range ids {
		idArgs[i] = id
	}
	rows, err = tx.QueryContext(ctx,
		`SELECT `+horizonColumns+` FROM horizons WHERE id IN (`+placeholders+`)
		 ORDER BY created_at DESC, id DESC`, idArgs...,
	)
	if err != nil {
		return nil, storeErr("edit horizons", err)
	}
	defer rows.Close()

	var edited []*planner.Horizon
	for rows.Next() {
		h, err := scanHorizon(rows)
		if err != nil {
			return nil, err
		}
		edited = append(edited, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("edit horizons", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("edit horizons", err)
	}
	return edited, nil
}

// DeleteHorizon removes a horizon.
func (s *Store) DeleteHorizon(ctx context.Context, id string) error {
	result, err := s.write.ExecContext(ctx, `DELETE FROM horizons WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete horizon", err)
	}
	return checkRowsAffected(result, "horizon")
}

// DeleteHorizonsByTitle removes every horizon with the given title and
// returns the number removed. Zero matches is not an error.
func (s *Store) DeleteHorizonsByTitle(ctx context.Context, title string) (int, error) {
	result, err := s.write.ExecContext(ctx, `DELETE FROM horizons WHERE title = ?`, title)
	if err != nil {
		return 0, storeErr("delete horizons by title", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, storeErr("delete horizons by title", err)
	}
	return int(n), nil
}

// CountHorizons returns the number of horizons matching the filter.
func (s *Store) CountHorizons(ctx context.Context, f planner.Filter) (int, error) {
	where, args := predicate(planner.ResourceHorizons, f)
	var n int
	err := s.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM horizons`+where, args...,
	).Scan(&n)
	return n, storeErr("count horizons", err)
}

func scanHorizon(sc scanner) (*planner.Horizon, error) {
	var h planner.Horizon
	var createdAt, updatedAt string
	if err := sc.Scan(&h.ID, &h.Title, &h.Details, &h.Type, &h.Date, &createdAt, &updatedAt); err != nil {
		return nil, storeErr("scan horizon", err)
	}
	var err error
	if h.CreatedAt, err = strToTime(createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = strToTime(updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}
