package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType represents the kind of payload decoded from a QR code
type ContentType string

const (
	ContentUPI  ContentType = "upi"
	ContentURL  ContentType = "url"
	ContentText ContentType = "text"
	ContentNone ContentType = "none"
)

// Classification is the routing decision for a decoded payload
type Classification struct {
	Type    ContentType `json:"type"`
	Payload string      `json:"payload"`
}

// ScanRequest represents a request to scan a QR code
type ScanRequest struct {
	// Raw decoded content, if the caller already has it
	Content string `json:"content,omitempty"`
	// Base64-encoded image data (PNG or JPEG)
	ImageBase64 string `json:"image_base64,omitempty"`
	// Raw image bytes; set when the image arrives as a file upload
	ImageData []byte `json:"-"`
}

// ScanResult is the merged report for one scan: image tampering analysis
// plus the payload analysis for whichever content type was decoded
type ScanResult struct {
	ID          uuid.UUID   `json:"id"`
	ScannedAt   time.Time   `json:"scanned_at"`
	ContentType ContentType `json:"content_type"`
	RawContent  string      `json:"raw_content,omitempty"`

	Image *ImageReport `json:"image_analysis,omitempty"`
	URL   *URLReport   `json:"url_analysis,omitempty"`
	UPI   *UPIReport   `json:"upi_analysis,omitempty"`

	RiskScore      int           `json:"risk_score"`
	RiskLevel      RiskLevel     `json:"risk_level"`
	Warnings       []string      `json:"warnings"`
	Recommendation string        `json:"recommendation"`
	Duration       time.Duration `json:"analysis_duration"`
}

// ScanStats tracks in-memory scanning statistics
type ScanStats struct {
	TotalScans    int64            `json:"total_scans"`
	Flagged       int64            `json:"flagged"`
	ByContentType map[string]int64 `json:"by_content_type"`
	ByRiskLevel   map[string]int64 `json:"by_risk_level"`
}
