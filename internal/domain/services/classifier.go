package services

import (
	"net/url"
	"regexp"
	"strings"

	"qrshield/internal/domain/models"
	"qrshield/pkg/logger"
)

// ContentClassifier routes decoded QR payloads to the right analyzer.
// Precedence: UPI deep links, bare UPI identifiers, URLs, free text.
type ContentClassifier struct {
	upiPattern *regexp.Regexp
	logger     *logger.Logger
}

// NewContentClassifier creates a classifier
func NewContentClassifier(log *logger.Logger) *ContentClassifier {
	return &ContentClassifier{
		upiPattern: regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`),
		logger:     log.WithComponent("classifier"),
	}
}

// Classify determines the content type of a decoded payload and extracts
// the value the downstream analyzer should receive
func (c *ContentClassifier) Classify(content string) models.Classification {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Classification{Type: models.ContentNone}
	}

	if strings.HasPrefix(strings.ToLower(content), "upi://") {
		if payee := extractPayee(content); payee != "" {
			return models.Classification{Type: models.ContentUPI, Payload: payee}
		}
		// Deep link without a payee address carries nothing to validate
		return models.Classification{Type: models.ContentText, Payload: content}
	}

	if strings.Count(content, "@") == 1 && c.upiPattern.MatchString(content) {
		return models.Classification{Type: models.ContentUPI, Payload: content}
	}

	lower := strings.ToLower(content)
	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "ftp://"):
		return models.Classification{Type: models.ContentURL, Payload: content}
	case strings.HasPrefix(lower, "www."):
		return models.Classification{Type: models.ContentURL, Payload: "https://" + content}
	case strings.Contains(content, ".") && !strings.Contains(content, " "):
		return models.Classification{Type: models.ContentURL, Payload: content}
	}

	return models.Classification{Type: models.ContentText, Payload: content}
}

// extractPayee pulls the pa (payee address) parameter out of a upi:// deep
// link
func extractPayee(content string) string {
	parsed, err := url.Parse(content)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("pa")
}
