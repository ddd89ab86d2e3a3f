// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tlibouban/deploycheck/internal/domain/toggle"
)

// TogglesHandler handles feature toggle requests.
type TogglesHandler struct {
	deps ToggleDependencies
}

// NewTogglesHandler creates a new toggles handler.
func NewTogglesHandler(deps ToggleDependencies) *TogglesHandler {
	return &TogglesHandler{deps: deps}
}

type registerToggleRequest struct {
	ID string `json:"id"`
}

type toggleResponse struct {
	ID      string       `json:"id"`
	State   toggle.State `json:"state"`
	Visible bool         `json:"visible"`
}

// HandleToggles handles POST /toggles requests, registering a toggle. An
// omitted id is generated server-side.
func (h *TogglesHandler) HandleToggles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req registerToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	id := h.deps.RegisterToggle(req.ID)
	state, _ := h.deps.ToggleState(id)
	writeJSON(w, http.StatusCreated, toggleResponse{
		ID:      id,
		State:   state,
		Visible: h.deps.ToggleVisible(id),
	})
}

type cycleRequest struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type cycleResponse struct {
	ID       string          `json:"id"`
	State    toggle.State    `json:"state"`
	Counters toggle.Counters `json:"counters"`
}

// HandleCycle handles POST /toggles/cycle requests.
func (h *TogglesHandler) HandleCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req cycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	state, err := h.deps.CycleToggle(r.Context(), req.ID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, toggle.ErrUnknownToggle):
			writeError(w, http.StatusNotFound, "not_found", err)
		default:
			writeError(w, http.StatusBadRequest, "bad_request", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, cycleResponse{
		ID:       req.ID,
		State:    state,
		Counters: h.deps.ToggleCounters(),
	})
}

// HandleCounters handles GET /toggles/counters requests.
func (h *TogglesHandler) HandleCounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ToggleCounters())
}

type filterRequest struct {
	State string `json:"state"`
}

// HandleFilter handles PUT /toggles/filter requests. An empty state clears
// the filter; counters always reflect the full set either way.
func (h *TogglesHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if err := h.deps.SetToggleFilter(req.State); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
