// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tlibouban/deploycheck/internal/domain/assignment"
	"github.com/tlibouban/deploycheck/internal/domain/clientindex"
	"github.com/tlibouban/deploycheck/internal/domain/profiles"
	"github.com/tlibouban/deploycheck/internal/domain/toggle"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	ClientDependencies
	AssignmentDependencies
	ToggleDependencies
	ProfileDependencies
}

// ClientDependencies covers the lookup and suggestion endpoints.
type ClientDependencies interface {
	Lookup(ctx context.Context, query string) (clientindex.Match, bool)
	Suggest(ctx context.Context, query string) []clientindex.Suggestion
}

// AssignmentDependencies covers trainer assignment resolution.
type AssignmentDependencies interface {
	ResolveAssignment(ctx context.Context, clientQuery, productCode, mode string) assignment.Result
}

// ToggleDependencies covers the feature toggle endpoints.
type ToggleDependencies interface {
	RegisterToggle(id string) string
	CycleToggle(ctx context.Context, id, kind string) (toggle.State, error)
	ToggleCounters() toggle.Counters
	ToggleState(id string) (toggle.State, bool)
	ToggleVisible(id string) bool
	SetToggleFilter(state string) error
}

// ProfileDependencies covers the user profile endpoints.
type ProfileDependencies interface {
	AddProfile(ctx context.Context, name string, count int) profiles.Profile
	RemoveProfile(ctx context.Context, id string) error
	SetProfileCount(ctx context.Context, id string, count int) error
	SetProfileEnabled(ctx context.Context, id string, enabled bool) error
	ListProfiles() []profiles.Profile
	CheckProfileConsistency(headcount int) profiles.ConsistencyReport
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	clientsHandler    *ClientsHandler
	assignmentHandler *AssignmentHandler
	togglesHandler    *TogglesHandler
	profilesHandler   *ProfilesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		clientsHandler:    NewClientsHandler(deps),
		assignmentHandler: NewAssignmentHandler(deps),
		togglesHandler:    NewTogglesHandler(deps),
		profilesHandler:   NewProfilesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/clients/lookup", MetricsMiddleware(s.clientsHandler.HandleLookup, "clients_lookup"))
	mux.HandleFunc("/clients/suggest", MetricsMiddleware(s.clientsHandler.HandleSuggest, "clients_suggest"))
	mux.HandleFunc("/assignment", MetricsMiddleware(s.assignmentHandler.HandleResolve, "assignment"))
	mux.HandleFunc("/toggles", MetricsMiddleware(s.togglesHandler.HandleToggles, "toggles"))
	mux.HandleFunc("/toggles/cycle", MetricsMiddleware(s.togglesHandler.HandleCycle, "toggles_cycle"))
	mux.HandleFunc("/toggles/counters", MetricsMiddleware(s.togglesHandler.HandleCounters, "toggles_counters"))
	mux.HandleFunc("/toggles/filter", MetricsMiddleware(s.togglesHandler.HandleFilter, "toggles_filter"))
	mux.HandleFunc("/profiles", MetricsMiddleware(s.profilesHandler.HandleProfiles, "profiles"))
	mux.HandleFunc("/profiles/consistency", MetricsMiddleware(s.profilesHandler.HandleConsistency, "profiles_consistency"))
	mux.HandleFunc("/profiles/", MetricsMiddleware(s.profilesHandler.HandleProfile, "profile"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
