package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"qrshield/internal/domain/models"
	"qrshield/internal/domain/services"
	"qrshield/pkg/logger"
)

const maxBatchSize = 50

// ScanHandler handles QR scan API requests
type ScanHandler struct {
	scanner        *services.Scanner
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanner *services.Scanner, maxUploadBytes int64, log *logger.Logger) *ScanHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ScanHandler{
		scanner:        scanner,
		maxUploadBytes: maxUploadBytes,
		logger:         log.WithComponent("scan-handler"),
	}
}

// Scan handles POST /api/v1/scan. Accepts a JSON body with decoded content
// or base64 image data, or a multipart upload with an "image" file field.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != "" {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var result *models.ScanResult
	switch {
	case len(req.ImageData) > 0:
		result = h.scanner.ScanImage(r.Context(), req.ImageData)
	case req.Content != "":
		result = h.scanner.ScanContent(r.Context(), req.Content)
	default:
		respondError(w, http.StatusBadRequest, "either content or image data is required")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// BatchScan handles POST /api/v1/scan/batch
func (h *ScanHandler) BatchScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contents []string `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Contents) == 0 {
		respondError(w, http.StatusBadRequest, "contents array is required")
		return
	}
	if len(req.Contents) > maxBatchSize {
		respondError(w, http.StatusBadRequest, "maximum 50 contents per batch")
		return
	}

	results := make([]*models.ScanResult, 0, len(req.Contents))
	for _, content := range req.Contents {
		results = append(results, h.scanner.ScanContent(r.Context(), content))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// parseRequest extracts a scan request from JSON or multipart bodies.
// Returns a non-empty error message on bad input.
func (h *ScanHandler) parseRequest(r *http.Request) (*models.ScanRequest, string) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, "invalid multipart body"
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, "image file field is required"
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
		if err != nil {
			return nil, "failed to read image upload"
		}
		return &models.ScanRequest{ImageData: data}, ""
	}

	var req models.ScanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxUploadBytes)).Decode(&req); err != nil {
		return nil, "invalid request body"
	}
	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return nil, "image_base64 is not valid base64"
		}
		req.ImageData = data
	}
	return &req, ""
}
