package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	planner "github.com/tidyplan/plannerd/internal"
)

func (s *server) handleListHorizons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryPage(q)
	if err != nil {
		writeError(w, err)
		return
	}
	horizons, err := s.deps.Horizons.List(r.Context(), queryFilter(q, planner.ResourceHorizons), page, queryFresh(q))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, horizons)
}

func (s *server) handleCreateHorizon(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var c planner.HorizonCreate
	if err := json.Unmarshal(body, &c); err != nil {
		writeError(w, fmt.Errorf("%w: %v", planner.ErrInvalidInput, err))
		return
	}
	horizon, err := s.deps.Horizons.Create(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, horizon)
}

func (s *server) handleGetHorizon(w http.ResponseWriter, r *http.Request) {
	horizon, err := s.deps.Horizons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, horizon)
}

func (s *server) handleUpdateHorizon(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	upd := planner.HorizonUpdate{
		Title:   strField(body, "title"),
		Details: strField(body, "details"),
		Type:    strField(body, "type"),
		Date:    strField(body, "horizon_date"),
	}
	horizon, err := s.deps.Horizons.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, horizon)
}

// handleEditHorizons updates every horizon whose current fields match the
// existing_* criteria in the body, applying the new_* values.
func (s *server) handleEditHorizons(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	edit := planner.HorizonEdit{
		ExistingTitle:   strField(body, "existing_title"),
		ExistingDetails: strField(body, "existing_details"),
		ExistingType:    strField(body, "existing_type"),
		ExistingDate:    strField(body, "existing_horizon_date"),
		NewTitle:        strField(body, "new_title"),
		NewDetails:      strField(body, "new_details"),
		NewType:         strField(body, "new_type"),
		NewDate:         strField(body, "new_horizon_date"),
	}
	horizons, err := s.deps.Horizons.Edit(r.Context(), edit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, horizons)
}

func (s *server) handleDeleteHorizon(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Horizons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDeleteHorizonsByTitle(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Horizons.DeleteByTitle(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *server) handleCountHorizons(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Horizons.Count(r.Context(), queryFilter(r.URL.Query(), planner.ResourceHorizons))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}
