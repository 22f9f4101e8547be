package sqlite

import (
	"context"
	"strings"
	"time"

	planner "github.com/tidyplan/plannerd/internal"
)

const todoColumns = `id, title, urgency, priority, created_at, updated_at`

// CreateTodo inserts a new todo.
func (s *Store) CreateTodo(ctx context.Context, t *planner.Todo) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, string(t.Urgency), string(t.Priority),
		timeToStr(t.CreatedAt), timeToStr(t.UpdatedAt),
	)
	return storeErr("create todo", err)
}

// ListTodos returns todos matching the filter, newest first.
func (s *Store) ListTodos(ctx context.Context, f planner.Filter, page planner.Page) ([]*planner.Todo, error) {
	where, args := predicate(planner.ResourceTodos, f)
	args = append(args, page.Limit, page.Skip)

	rows, err := s.read.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...,
	)
	if err != nil {
		return nil, storeErr("list todos", err)
	}
	defer rows.Close()

	todos := []*planner.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, storeErr("list todos", rows.Err())
}

// GetTodo retrieves a todo by ID.
func (s *Store) GetTodo(ctx context.Context, id string) (*planner.Todo, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ?`, id,
	)
	return scanTodo(row)
}

// UpdateTodo applies the non-nil fields of upd and returns the new row.
func (s *Store) UpdateTodo(ctx context.Context, id string, upd planner.TodoUpdate) (*planner.Todo, error) {
	sets := []string{"updated_at = ?"}
	args := []any{timeToStr(time.Now())}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Urgency != nil {
		sets = append(sets, "urgency = ?")
		args = append(args, string(*upd.Urgency))
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*upd.Priority))
	}
	args = append(args, id)

	result, err := s.write.ExecContext(ctx,
		`UPDATE todos SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, storeErr("update todo", err)
	}
	if err := checkRowsAffected(result, "todo"); err != nil {
		return nil, err
	}
	return s.GetTodo(ctx, id)
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	result, err := s.write.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete todo", err)
	}
	return checkRowsAffected(result, "todo")
}

// CountTodos returns the number of todos matching the filter.
func (s *Store) CountTodos(ctx context.Context, f planner.Filter) (int, error) {
	where, args := predicate(planner.ResourceTodos, f)
	var n int
	err := s.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM todos`+where, args...,
	).Scan(&n)
	return n, storeErr("count todos", err)
}

func scanTodo(sc scanner) (*planner.Todo, error) {
	var t planner.Todo
	var urgency, priority, createdAt, updatedAt string
	if err := sc.Scan(&t.ID, &t.Title, &urgency, &priority, &createdAt, &updatedAt); err != nil {
		return nil, storeErr("scan todo", err)
	}
	t.Urgency = planner.Level(urgency)
	t.Priority = planner.Level(priority)
	var err error
	if t.CreatedAt, err = strToTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = strToTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
