// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// AssignmentHandler handles trainer assignment requests.
type AssignmentHandler struct {
	deps AssignmentDependencies
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(deps AssignmentDependencies) *AssignmentHandler {
	return &AssignmentHandler{deps: deps}
}

// assignmentRequest is the POST /assignment body.
type assignmentRequest struct {
	Client       string `json:"client"`
	ProductCode  string `json:"product_code"`
	TrainingMode string `json:"training_mode"`
}

func (a assignmentRequest) validate() error {
	if strings.TrimSpace(a.Client) == "" {
		return errors.New("missing client")
	}
	return nil
}

// HandleResolve handles POST /assignment requests. Assignment failures are
// structured results, not HTTP errors, so the client distinguishes "no
// trainers for this zone" from a broken request.
func (h *AssignmentHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res := h.deps.ResolveAssignment(r.Context(), req.Client, req.ProductCode, req.TrainingMode)
	writeJSON(w, http.StatusOK, res)
}
