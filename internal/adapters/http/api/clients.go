// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ClientsHandler handles client lookup and suggestion requests.
type ClientsHandler struct {
	deps ClientDependencies
}

// NewClientsHandler creates a new clients handler.
func NewClientsHandler(deps ClientDependencies) *ClientsHandler {
	return &ClientsHandler{deps: deps}
}

// HandleLookup handles GET /clients/lookup?q={query} requests. A query that
// resolves neither exactly nor approximately returns 404.
func (h *ClientsHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingQuery)
		return
	}
	m, ok := h.deps.Lookup(r.Context(), q)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrClientNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type suggestResponse struct {
	Query       string `json:"query"`
	Suggestions any    `json:"suggestions"`
}

// HandleSuggest handles GET /clients/suggest?q={query} requests. Queries
// below the minimum length yield an empty list, not an error.
func (h *ClientsHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query().Get("q")
	sugg := h.deps.Suggest(r.Context(), q)
	writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: sugg})
}
