package handlers

import (
	"net/http"

	"qrshield/internal/domain/services"
	"qrshield/pkg/logger"
)

// StatsHandler serves scanning statistics
type StatsHandler struct {
	stats  *services.StatsTracker
	logger *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats *services.StatsTracker, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: log.WithComponent("stats-handler"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Snapshot())
}
