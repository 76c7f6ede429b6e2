package handlers

import (
	"encoding/json"
	"net/http"

	"qrshield/internal/domain/services"
	"qrshield/internal/reputation"
	"qrshield/pkg/logger"
)

// URLHandler handles URL analysis API requests
type URLHandler struct {
	urls       *services.URLAnalyzer
	reputation *reputation.Service
	logger     *logger.Logger
}

// NewURLHandler creates a new URL handler
func NewURLHandler(urls *services.URLAnalyzer, rep *reputation.Service, log *logger.Logger) *URLHandler {
	return &URLHandler{
		urls:       urls,
		reputation: rep,
		logger:     log.WithComponent("url-handler"),
	}
}

// Check handles POST /api/v1/url/check
func (h *URLHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL    string `json:"url"`
		Expand *bool  `json:"expand,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	expand := true
	if req.Expand != nil {
		expand = *req.Expand
	}

	result := h.urls.Analyze(r.Context(), req.URL, expand)
	respondJSON(w, http.StatusOK, result)
}

// Reputation handles POST /api/v1/url/reputation
func (h *URLHandler) Reputation(w http.ResponseWriter, r *http.Request) {
	if h.reputation == nil || !h.reputation.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "no reputation sources configured")
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := h.reputation.Check(r.Context(), req.URL)
	respondJSON(w, http.StatusOK, result)
}
