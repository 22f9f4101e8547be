package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	planner "github.com/tidyplan/plannerd/internal"
)

func (s *server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryPage(q)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := s.deps.Events.List(r.Context(), queryFilter(q, planner.ResourceEvents), page, queryFresh(q))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var c planner.EventCreate
	if err := json.Unmarshal(body, &c); err != nil {
		writeError(w, fmt.Errorf("%w: %v", planner.ErrInvalidInput, err))
		return
	}
	event, err := s.deps.Events.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.deps.Events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
