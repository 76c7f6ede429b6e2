package handlers

import (
	"encoding/json"
	"net/http"

	"qrshield/internal/config"
	"qrshield/internal/domain/services"
	"qrshield/internal/infrastructure/cache"
	"qrshield/internal/reputation"
	"qrshield/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health *HealthHandler
	Scan   *ScanHandler
	URL    *URLHandler
	UPI    *UPIHandler
	Tables *TablesHandler
	Stats  *StatsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Config     config.Config
	Scanner    *services.Scanner
	URLs       *services.URLAnalyzer
	UPI        *services.UPIValidator
	Reputation *reputation.Service
	Stats      *services.StatsTracker
	Cache      *cache.Redis
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Cache, deps.Config.App.Version, deps.Logger),
		Scan:   NewScanHandler(deps.Scanner, deps.Config.Server.MaxUploadBytes, deps.Logger),
		URL:    NewURLHandler(deps.URLs, deps.Reputation, deps.Logger),
		UPI:    NewUPIHandler(deps.UPI, deps.Logger),
		Tables: NewTablesHandler(deps.UPI, deps.Logger),
		Stats:  NewStatsHandler(deps.Stats, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
