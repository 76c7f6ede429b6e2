package services

import (
	"bytes"
	"context"
	"image"
	"time"

	"github.com/google/uuid"

	"qrshield/internal/domain/models"
	"qrshield/internal/qrdecode"
	"qrshield/pkg/logger"
)

// Scanner orchestrates a full QR scan: decode the image, score it for
// tampering, classify the payload and run the matching content analyzer.
// The merged report carries the worst score and level of its parts.
type Scanner struct {
	decoder    *qrdecode.Decoder
	images     *ImageAnalyzer
	urls       *URLAnalyzer
	upi        *UPIValidator
	classifier *ContentClassifier
	stats      *StatsTracker
	logger     *logger.Logger

	expandShortened bool
}

// NewScanner wires the analysis pipeline together
func NewScanner(
	decoder *qrdecode.Decoder,
	images *ImageAnalyzer,
	urls *URLAnalyzer,
	upi *UPIValidator,
	classifier *ContentClassifier,
	stats *StatsTracker,
	expandShortened bool,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		decoder:         decoder,
		images:          images,
		urls:            urls,
		upi:             upi,
		classifier:      classifier,
		stats:           stats,
		expandShortened: expandShortened,
		logger:          log.WithComponent("scanner"),
	}
}

// ScanContent analyzes an already-decoded QR payload
func (s *Scanner) ScanContent(ctx context.Context, content string) *models.ScanResult {
	start := time.Now()
	result := s.newResult()
	s.analyzeContent(ctx, result, content)
	s.finish(result, start)
	return result
}

// ScanImage decodes and analyzes a QR image. The tampering analysis always
// runs; payload analysis runs only when a QR code can be extracted.
func (s *Scanner) ScanImage(ctx context.Context, imageData []byte) *models.ScanResult {
	start := time.Now()
	result := s.newResult()

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		result.ContentType = models.ContentNone
		result.Image = &models.ImageReport{
			Status:    models.StatusError,
			Message:   "Invalid image data",
			IsMasked:  true,
			RiskScore: 100,
			RiskLevel: models.RiskHigh,
		}
		result.Warnings = append(result.Warnings, "Image data could not be decoded")
		s.finish(result, start)
		return result
	}

	result.Image = s.images.AnalyzeImage(img)

	decoded, err := s.decoder.DecodeBytes(ctx, imageData)
	if err != nil {
		result.ContentType = models.ContentNone
		result.Warnings = append(result.Warnings, "No QR code could be decoded from the image")
		s.finish(result, start)
		return result
	}
	result.Image.DecodedData = decoded.Text

	s.analyzeContent(ctx, result, decoded.Text)
	s.finish(result, start)
	return result
}

func (s *Scanner) newResult() *models.ScanResult {
	return &models.ScanResult{
		ID:        uuid.New(),
		ScannedAt: time.Now().UTC(),
		Warnings:  []string{},
	}
}

func (s *Scanner) analyzeContent(ctx context.Context, result *models.ScanResult, content string) {
	classification := s.classifier.Classify(content)
	result.ContentType = classification.Type
	result.RawContent = content

	switch classification.Type {
	case models.ContentUPI:
		result.UPI = s.upi.Validate(classification.Payload)
		if result.UPI.Status != models.UPIStatusSuccess {
			if result.UPI.Message != "" {
				result.Warnings = append(result.Warnings, result.UPI.Message)
			} else {
				result.Warnings = append(result.Warnings, "UPI handle belongs to an unknown bank or app")
			}
		}
	case models.ContentURL:
		result.URL = s.urls.Analyze(ctx, classification.Payload, s.expandShortened)
		result.Warnings = append(result.Warnings, result.URL.Warnings...)
	case models.ContentText:
		// Plain text carries no payment or navigation risk of its own
	}
}

// finish merges the component scores, taking the worst of what ran
func (s *Scanner) finish(result *models.ScanResult, start time.Time) {
	score := 0
	level := models.RiskLow

	if result.Image != nil {
		score = maxInt(score, result.Image.RiskScore)
		level = models.MaxRiskLevel(level, result.Image.RiskLevel)
		if result.Image.IsMasked {
			result.Warnings = append(result.Warnings, "QR image shows signs of tampering or overlay")
		}
	}
	if result.URL != nil {
		score = maxInt(score, result.URL.RiskScore)
		level = models.MaxRiskLevel(level, result.URL.RiskLevel)
	}
	if result.UPI != nil {
		score = maxInt(score, result.UPI.RiskScore)
		level = models.MaxRiskLevel(level, result.UPI.RiskLevel)
	}

	result.RiskScore = models.ClampScore(score)
	result.RiskLevel = level
	result.Recommendation = scanRecommendation(result.RiskScore)
	result.Duration = time.Since(start)

	if s.stats != nil {
		s.stats.Record(result)
	}

	s.logger.Info().
		Str("scan_id", result.ID.String()).
		Str("content_type", string(result.ContentType)).
		Int("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Dur("duration", result.Duration).
		Msg("scan completed")
}

func scanRecommendation(score int) string {
	switch {
	case score <= 25:
		return "Low risk - Content appears safe but always verify before paying"
	case score <= 50:
		return "Exercise caution - Some suspicious elements detected"
	case score <= 75:
		return "High risk - Do not proceed without independent verification"
	default:
		return "CRITICAL RISK - Do not interact with this QR code"
	}
}
