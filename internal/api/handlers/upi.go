package handlers

import (
	"encoding/json"
	"net/http"

	"qrshield/internal/domain/services"
	"qrshield/pkg/logger"
)

// UPIHandler handles UPI validation API requests
type UPIHandler struct {
	validator *services.UPIValidator
	logger    *logger.Logger
}

// NewUPIHandler creates a new UPI handler
func NewUPIHandler(validator *services.UPIValidator, log *logger.Logger) *UPIHandler {
	return &UPIHandler{
		validator: validator,
		logger:    log.WithComponent("upi-handler"),
	}
}

// Validate handles POST /api/v1/upi/validate
func (h *UPIHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UPIID string `json:"upi_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UPIID == "" {
		respondError(w, http.StatusBadRequest, "upi_id is required")
		return
	}

	result := h.validator.Validate(req.UPIID)
	respondJSON(w, http.StatusOK, result)
}
