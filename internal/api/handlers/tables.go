package handlers

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"qrshield/internal/domain/models"
	"qrshield/internal/domain/services"
	"qrshield/pkg/logger"
)

// TablesHandler exposes the static lookup tables for inspection
type TablesHandler struct {
	validator *services.UPIValidator
	logger    *logger.Logger
}

// NewTablesHandler creates a new tables handler
func NewTablesHandler(validator *services.UPIValidator, log *logger.Logger) *TablesHandler {
	return &TablesHandler{
		validator: validator,
		logger:    log.WithComponent("tables-handler"),
	}
}

// Get handles GET /api/v1/tables/{table}
func (h *TablesHandler) Get(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "table") {
	case "tlds":
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"table":   "suspicious_tlds",
			"entries": sortedKeys(models.SuspiciousTLDs),
		})
	case "shorteners":
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"table":   "url_shorteners",
			"entries": sortedKeys(models.URLShorteners),
		})
	case "keywords":
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"table":   "phishing_keywords",
			"entries": models.PhishingKeywords,
		})
	case "banks":
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"table":   "bank_suffixes",
			"entries": h.validator.Banks(),
		})
	default:
		respondError(w, http.StatusNotFound, "unknown table")
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
