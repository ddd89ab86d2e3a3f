// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tlibouban/deploycheck/internal/domain/profiles"
)

// ProfilesHandler handles user profile requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

type addProfileRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HandleProfiles handles GET and POST /profiles requests.
func (h *ProfilesHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.ListProfiles())
	case http.MethodPost:
		var req addProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing name"))
			return
		}
		p := h.deps.AddProfile(r.Context(), req.Name, req.Count)
		writeJSON(w, http.StatusCreated, p)
	default:
		http.NotFound(w, r)
	}
}

// HandleConsistency handles GET /profiles/consistency?headcount={n} requests.
func (h *ProfilesHandler) HandleConsistency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	headcount, err := strconv.Atoi(r.URL.Query().Get("headcount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid headcount"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CheckProfileConsistency(headcount))
}

type updateProfileRequest struct {
	Count   *int  `json:"count,omitempty"`
	Enabled *bool `json:"enabled,omitempty"`
}

// HandleProfile handles PATCH and DELETE /profiles/{id} requests.
func (h *ProfilesHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/profiles/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if err := h.deps.RemoveProfile(r.Context(), id); err != nil {
			writeProfileError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPatch:
		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if req.Count != nil {
			if err := h.deps.SetProfileCount(r.Context(), id, *req.Count); err != nil {
				writeProfileError(w, err)
				return
			}
		}
		if req.Enabled != nil {
			if err := h.deps.SetProfileEnabled(r.Context(), id, *req.Enabled); err != nil {
				writeProfileError(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profiles.ErrUnknownProfile):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", err)
	}
}
