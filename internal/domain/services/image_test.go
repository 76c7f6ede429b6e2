package services

import (
	"context"
	"image"
	"image/color"
	"testing"

	"qrshield/internal/domain/models"
	grayops "qrshield/internal/imaging"
)

func newTestImageAnalyzer() *ImageAnalyzer {
	return NewImageAnalyzer(nil, testLogger())
}

func uniformGray(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func TestAnalyzeImageUniform(t *testing.T) {
	a := newTestImageAnalyzer()

	report := a.AnalyzeImage(uniformGray(64, 64, 128))
	if report.Status != models.StatusSuccess {
		t.Fatalf("Status = %q, want success", report.Status)
	}
	m := report.Details
	if m == nil {
		t.Fatal("expected metrics")
	}

	// Flat image: zero Laplacian variance, no edges, no noise, no finder
	if m.QualityScore != 40 {
		t.Errorf("QualityScore = %v, want 40", m.QualityScore)
	}
	if m.StructureScore != 0 {
		t.Errorf("StructureScore = %v, want 0 with no contours", m.StructureScore)
	}
	if m.NoiseScore != 80 {
		t.Errorf("NoiseScore = %v, want 80", m.NoiseScore)
	}
	if m.SymmetryScore != 30 {
		t.Errorf("SymmetryScore = %v, want fallback 30", m.SymmetryScore)
	}
	if m.FinderPatternScore != 30 {
		t.Errorf("FinderPatternScore = %v, want 30", m.FinderPatternScore)
	}

	// 0.25*60 + 0.20*100 + 0.20*20 + 0.20*70 + 0.15*70 = 63.5
	if report.RiskScore != 63 {
		t.Errorf("RiskScore = %d, want 63", report.RiskScore)
	}
	if !report.IsMasked {
		t.Error("expected IsMasked for a structureless image")
	}
	if report.RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel = %q, want High", report.RiskLevel)
	}
}

func TestAnalyzeBadPayload(t *testing.T) {
	a := newTestImageAnalyzer()

	report := a.Analyze(context.Background(), []byte("definitely not an image"))
	if report.Status != models.StatusError {
		t.Fatalf("Status = %q, want error", report.Status)
	}
	if report.RiskScore != 100 || report.RiskLevel != models.RiskHigh {
		t.Errorf("got %d/%q, want fail-closed 100/High", report.RiskScore, report.RiskLevel)
	}
	if !report.IsMasked {
		t.Error("undecodable payloads must be treated as masked")
	}
}

func TestAnalyzeImageWithStructure(t *testing.T) {
	a := newTestImageAnalyzer()

	// A large dark square on a light field produces one solid quad-like
	// edge region
	img := image.NewGray(image.Rect(0, 0, 96, 96))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 20; y < 76; y++ {
		for x := 20; x < 76; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	report := a.AnalyzeImage(img)
	if report.Details.StructureScore <= 0 {
		t.Errorf("StructureScore = %v, want > 0 for a quad region", report.Details.StructureScore)
	}
	if report.Details.SymmetryScore <= 30 {
		t.Errorf("SymmetryScore = %v, want above the no-contour fallback for a symmetric square",
			report.Details.SymmetryScore)
	}
}

func TestSymmetryScoreIdenticalQuadrants(t *testing.T) {
	a := newTestImageAnalyzer()

	// Vertical stripes make all four quadrants identical. The quadrants
	// are compared as cropped, without mirroring, so every pair must be
	// a perfect match.
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 1; x < 8; x += 2 {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	comps := []grayops.Component{{Area: 32, Bounds: image.Rect(0, 0, 8, 8)}}

	if got := a.symmetryScore(img, comps); got != 100 {
		t.Errorf("symmetryScore = %v, want 100 for identical quadrants", got)
	}
}

func TestAnalyzeImageDeterministic(t *testing.T) {
	a := newTestImageAnalyzer()
	img := uniformGray(48, 48, 200)

	first := a.AnalyzeImage(img)
	second := a.AnalyzeImage(img)
	if first.RiskScore != second.RiskScore || *first.Details != *second.Details {
		t.Errorf("repeated analysis differs: %+v vs %+v", first.Details, second.Details)
	}
}
