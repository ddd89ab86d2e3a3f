package api

import (
	"net/http"

	service "github.com/tlibouban/deploycheck/internal/app"
)

// Stats is the /stats response body.
type Stats = service.Stats

// StatsProvider supplies the service snapshot served at /stats.
type StatsProvider interface {
	GetStats() Stats
}

// StatsHandler serves the monitoring snapshot.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
