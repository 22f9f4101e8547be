package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	planner "github.com/tidyplan/plannerd/internal"
)

// predicate builds a single WHERE conjunction from the filter's present
// fields, walking the resource's canonical field order. Absent fields
// contribute no condition; an empty filter yields no WHERE clause at all,
// which is the "list everything" query, never a post-filtered superset.
func predicate(rt planner.ResourceType, f planner.Filter) (string, []any) {
	var conds []string
	var args []any
	for _, field := range planner.FilterFields(rt) {
		v, ok := f[field]
		if !ok {
			continue
		}
		conds = append(conds, field+" = ?")
		args = append(args, v)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// storeErr classifies a driver error: missing rows become ErrNotFound,
// anything else is a store-unavailable condition that callers must not cache.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return planner.ErrNotFound
	}
	return fmt.Errorf("%s: %w: %v", op, planner.ErrStoreUnavailable, err)
}

func checkRowsAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storeErr(entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, planner.ErrNotFound)
	}
	return nil
}

func timeToStr(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// strToTime parses a stored timestamp column. A value that does not parse
// means the row is corrupt; surface it like any other scan failure instead
// of round-tripping a zero time.
func strToTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w: %v", s, planner.ErrStoreUnavailable, err)
	}
	return t, nil
}

func marshalJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(data), nil
}
