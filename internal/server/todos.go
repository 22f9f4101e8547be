package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	planner "github.com/tidyplan/plannerd/internal"
)

func (s *server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryPage(q)
	if err != nil {
		writeError(w, err)
		return
	}
	todos, err := s.deps.Todos.List(r.Context(), queryFilter(q, planner.ResourceTodos), page, queryFresh(q))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var c planner.TodoCreate
	if err := json.Unmarshal(body, &c); err != nil {
		writeError(w, fmt.Errorf("%w: %v", planner.ErrInvalidInput, err))
		return
	}
	todo, err := s.deps.Todos.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.deps.Todos.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	upd := planner.TodoUpdate{
		Title:    strField(body, "title"),
		Urgency:  levelField(body, "urgency"),
		Priority: levelField(body, "priority"),
	}
	todo, err := s.deps.Todos.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Todos.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCountTodos(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Todos.Count(r.Context(), queryFilter(r.URL.Query(), planner.ResourceTodos))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// levelField is strField for urgency/priority values.
func levelField(body []byte, path string) *planner.Level {
	v := strField(body, path)
	if v == nil {
		return nil
	}
	l := planner.Level(*v)
	return &l
}
