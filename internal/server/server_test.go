package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	planner "github.com/tidyplan/plannerd/internal"
	"github.com/tidyplan/plannerd/internal/app"
	"github.com/tidyplan/plannerd/internal/cache"
	"github.com/tidyplan/plannerd/internal/testutil"
)

func newTestServer(t *testing.T, deps *Deps) (http.Handler, *testutil.FakeStore) {
	t.Helper()
	mem, err := cache.NewMemory(1000, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	store := testutil.NewFakeStore()
	coord := app.NewCoordinator(mem, nil)
	if deps == nil {
		deps = &Deps{}
	}
	deps.Todos = app.NewTodoService(store, coord, time.Minute)
	deps.Horizons = app.NewHorizonService(store, coord, time.Minute)
	deps.Events = app.NewEventService(store, coord, time.Minute)
	return New(*deps), store
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadyzFailsWhenStoreDown(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, &Deps{
		ReadyCheck: func(context.Context) error { return errors.New("db down") },
	})

	rec := doJSON(t, h, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz = %d, want 503", rec.Code)
	}
}

func TestTodoLifecycle(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/todos", `{"title":"write tests","urgency":"high","priority":"low"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var created planner.Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Urgency != planner.LevelHigh {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, h, http.MethodGet, "/todos/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}

	// Partial update: only priority in the body, title must survive.
	rec = doJSON(t, h, http.MethodPut, "/todos/"+created.ID, `{"priority":"high"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}
	var updated planner.Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Title != "write tests" || updated.Priority != planner.LevelHigh {
		t.Errorf("updated = %+v", updated)
	}

	rec = doJSON(t, h, http.MethodDelete, "/todos/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/todos/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestListTodosRejectsUnknownFilterValue(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/todos?urgency=critical", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("list = %d, want 400", rec.Code)
	}
}

func TestListTodosBadPagination(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	for _, path := range []string{"/todos?limit=abc", "/todos?skip=-1"} {
		rec := doJSON(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", path, rec.Code)
		}
	}
}

func TestEmptyQueryParamIsAFilterValue(t *testing.T) {
	t.Parallel()
	h, store := newTestServer(t, nil)

	// ?title= filters on the empty title; an absent parameter does not.
	rec := doJSON(t, h, http.MethodGet, "/horizons?title=", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d: %s", rec.Code, rec.Body.String())
	}
	got := store.LastListFilter(planner.ResourceHorizons)
	if v, ok := got[planner.FieldTitle]; !ok || v != "" {
		t.Errorf("store filter = %v, want title present and empty", got)
	}

	rec = doJSON(t, h, http.MethodGet, "/horizons", "")
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}
	if got := store.LastListFilter(planner.ResourceHorizons); len(got) != 0 {
		t.Errorf("store filter = %v, want empty for no query params", got)
	}
}

func TestUpdateTodoOmittedFieldIsNotZeroed(t *testing.T) {
	t.Parallel()
	h, store := newTestServer(t, nil)
	ctx := context.Background()

	store.CreateTodo(ctx, &planner.Todo{
		ID: "t1", Title: "keep me",
		Urgency: planner.LevelLow, Priority: planner.LevelLow,
	})

	// Todos have no details field; a stray one in the body is ignored
	// rather than rejected or applied.
	rec := doJSON(t, h, http.MethodPut, "/todos/t1", `{"urgency":"high","details":"x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}
	todo, err := store.GetTodo(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if todo.Title != "keep me" || todo.Urgency != planner.LevelHigh {
		t.Errorf("todo = %+v", todo)
	}

	// An explicitly empty title is a different request, and an invalid one.
	rec = doJSON(t, h, http.MethodPut, "/todos/t1", `{"title":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty title = %d, want 400", rec.Code)
	}
}

func TestUpdateTodoMalformedBody(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPut, "/todos/t1", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", rec.Code)
	}
}

func TestEditHorizonsByCriteria(t *testing.T) {
	t.Parallel()
	h, store := newTestServer(t, nil)
	ctx := context.Background()

	store.CreateHorizon(ctx, &planner.Horizon{ID: "h1", Title: "move", Details: "pack boxes", Type: "none"})
	store.CreateHorizon(ctx, &planner.Horizon{ID: "h2", Title: "move", Details: "hire van", Type: "none"})

	rec := doJSON(t, h, http.MethodPut, "/horizons", `{"existing_title":"move","new_type":"life"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit = %d: %s", rec.Code, rec.Body.String())
	}
	var edited []*planner.Horizon
	if err := json.Unmarshal(rec.Body.Bytes(), &edited); err != nil {
		t.Fatal(err)
	}
	if len(edited) != 2 {
		t.Fatalf("edited %d, want 2", len(edited))
	}

	// Criteria-free edits would touch everything; reject them.
	rec = doJSON(t, h, http.MethodPut, "/horizons", `{"new_type":"life"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no criteria = %d, want 400", rec.Code)
	}
}

func TestDeleteHorizonsByTitleEndpoint(t *testing.T) {
	t.Parallel()
	h, store := newTestServer(t, nil)
	ctx := context.Background()

	store.CreateHorizon(ctx, &planner.Horizon{ID: "h1", Title: "done", Details: "x", Type: "none"})

	rec := doJSON(t, h, http.MethodDelete, "/horizons?title=done", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["deleted"] != 1 {
		t.Errorf("deleted = %d, want 1", resp["deleted"])
	}

	rec = doJSON(t, h, http.MethodDelete, "/horizons", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", rec.Code)
	}
}

func TestCreateEventValidation(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/events", `{"date":"tomorrow","time":"2:30 PM","event_title":"sync","duration":30}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/events",
		`{"date":"2026-09-01","time":"2:30 PM - 3:00 PM","event_title":"sync","duration":30,"attendees":["ana","ben"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	var ev planner.BookmarkedEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &ev); err != nil {
		t.Fatal(err)
	}
	if len(ev.Attendees) != 2 {
		t.Errorf("attendees = %v", ev.Attendees)
	}
}

func TestStoreErrorMapsTo503(t *testing.T) {
	t.Parallel()
	h, store := newTestServer(t, nil)

	store.Err = planner.ErrStoreUnavailable
	rec := doJSON(t, h, http.MethodGet, "/todos", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("list = %d, want 503", rec.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()
	h, _ := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing generated request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "client-id-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "client-id-1" {
		t.Errorf("request ID = %q, want client-supplied value echoed", got)
	}
}
