package services

import (
	"testing"

	"qrshield/internal/domain/models"
)

func TestClassify(t *testing.T) {
	c := NewContentClassifier(testLogger())

	tests := []struct {
		name        string
		content     string
		wantType    models.ContentType
		wantPayload string
	}{
		{"empty", "", models.ContentNone, ""},
		{"whitespace only", "   ", models.ContentNone, ""},
		{"upi deep link", "upi://pay?pa=merchant@oksbi&pn=Shop&am=100", models.ContentUPI, "merchant@oksbi"},
		{"upi deep link uppercase scheme", "UPI://pay?pa=merchant@ybl", models.ContentUPI, "merchant@ybl"},
		{"upi deep link without payee", "upi://pay?pn=Shop", models.ContentText, "upi://pay?pn=Shop"},
		{"bare upi handle", "merchant@oksbi", models.ContentUPI, "merchant@oksbi"},
		{"double separator is not upi", "user@@oksbi", models.ContentText, "user@@oksbi"},
		{"http url", "http://example.org/page", models.ContentURL, "http://example.org/page"},
		{"https url", "https://example.org", models.ContentURL, "https://example.org"},
		{"ftp url", "ftp://files.example.org/a.txt", models.ContentURL, "ftp://files.example.org/a.txt"},
		{"www url gets scheme", "www.example.org/shop", models.ContentURL, "https://www.example.org/shop"},
		{"bare domain", "example.org", models.ContentURL, "example.org"},
		{"text with spaces", "pay me 100 rupees", models.ContentText, "pay me 100 rupees"},
		{"plain word", "hello", models.ContentText, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.content)
			if got.Type != tt.wantType {
				t.Fatalf("Classify(%q).Type = %q, want %q", tt.content, got.Type, tt.wantType)
			}
			if got.Payload != tt.wantPayload {
				t.Errorf("Classify(%q).Payload = %q, want %q", tt.content, got.Payload, tt.wantPayload)
			}
		})
	}
}
