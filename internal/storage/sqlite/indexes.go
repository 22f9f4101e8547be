package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	planner "github.com/tidyplan/plannerd/internal"
)

// EnsureIndexes creates each declared index if absent. An index that
// already exists with the declared shape is a no-op; one that exists under
// the same name with a different shape is a configuration conflict and
// fails with planner.ErrIndexConflict so startup can halt instead of
// running with unverifiable scan behavior.
func (s *Store) EnsureIndexes(ctx context.Context, specs []planner.IndexSpec) error {
	for _, spec := range specs {
		want := indexDDL(spec)

		var have string
		err := s.write.QueryRowContext(ctx,
			`SELECT sql FROM sqlite_master WHERE type = 'index' AND name = ?`,
			spec.Name,
		).Scan(&have)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := s.write.ExecContext(ctx, want); err != nil {
				return fmt.Errorf("create index %s: %w: %v", spec.Name, planner.ErrStoreUnavailable, err)
			}
		case err != nil:
			return fmt.Errorf("inspect index %s: %w: %v", spec.Name, planner.ErrStoreUnavailable, err)
		case !sameDDL(have, want):
			return fmt.Errorf("%w: index %s exists as %q, declared shape is %q",
				planner.ErrIndexConflict, spec.Name, have, want)
		}
	}
	return nil
}

// indexDDL renders the canonical CREATE INDEX statement for a spec. The
// rendering is deterministic, so comparing DDL text detects shape drift.
func indexDDL(spec planner.IndexSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = c.Name
		if c.Desc {
			cols[i] += " DESC"
		}
	}
	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, spec.Name, spec.Collection, strings.Join(cols, ", "))
}

// sameDDL compares index DDL ignoring case and whitespace runs, which is
// how sqlite_master may normalize the stored statement.
func sameDDL(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}
