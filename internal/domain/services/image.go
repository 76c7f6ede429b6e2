package services

import (
	"bytes"
	"context"
	"image"
	"math"

	"qrshield/internal/domain/models"
	grayops "qrshield/internal/imaging"
	"qrshield/internal/qrdecode"
	"qrshield/pkg/logger"
)

// Metric weights for the tampering risk combination. Each metric
// contributes (100 - score) * weight.
const (
	weightQuality       = 0.25
	weightQRStructure   = 0.20
	weightNoise         = 0.20
	weightSymmetry      = 0.20
	weightFinderPattern = 0.15
)

// maskedRiskThreshold is the tampering score at or above which an image is
// flagged as masked
const maskedRiskThreshold = 30

// ImageAnalyzer scores QR images for signs of tampering or overlays
type ImageAnalyzer struct {
	decoder *qrdecode.Decoder
	logger  *logger.Logger
}

// NewImageAnalyzer creates an image analyzer. decoder may be nil, in which
// case reports carry no decoded payload.
func NewImageAnalyzer(decoder *qrdecode.Decoder, log *logger.Logger) *ImageAnalyzer {
	return &ImageAnalyzer{
		decoder: decoder,
		logger:  log.WithComponent("image-analyzer"),
	}
}

// Analyze parses the image payload, scores it and attaches the decoded QR
// payload when one can be extracted. Undecodable payloads fail closed with
// maximum risk.
func (a *ImageAnalyzer) Analyze(ctx context.Context, data []byte) *models.ImageReport {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		a.logger.Warn().Err(err).Msg("image payload could not be parsed")
		return &models.ImageReport{
			Status:    models.StatusError,
			Message:   "Invalid image data",
			IsMasked:  true,
			RiskScore: 100,
			RiskLevel: models.RiskHigh,
		}
	}

	report := a.AnalyzeImage(img)

	if a.decoder != nil {
		if result, err := a.decoder.DecodeBytes(ctx, data); err == nil {
			report.DecodedData = result.Text
		}
	}
	return report
}

// AnalyzeImage scores a parsed image. The decoded payload is not attached;
// use Analyze for the full report.
func (a *ImageAnalyzer) AnalyzeImage(img image.Image) *models.ImageReport {
	gray := grayops.FromImage(img)
	edges := grayops.SobelEdges(gray, 100)
	components := grayops.ConnectedComponents(edges)

	metrics := models.ImageMetrics{
		QualityScore:       a.qualityScore(gray),
		StructureScore:     a.structureScore(components),
		NoiseScore:         a.noiseScore(gray),
		SymmetryScore:      a.symmetryScore(gray, components),
		FinderPatternScore: a.finderPatternScore(gray),
	}

	risk := weightQuality*(100-metrics.QualityScore) +
		weightQRStructure*(100-metrics.StructureScore) +
		weightNoise*(100-metrics.NoiseScore) +
		weightSymmetry*(100-metrics.SymmetryScore) +
		weightFinderPattern*(100-metrics.FinderPatternScore)

	score := models.ClampScore(int(math.Min(100, risk)))

	report := &models.ImageReport{
		Status:    models.StatusSuccess,
		IsMasked:  score >= maskedRiskThreshold,
		RiskScore: score,
		RiskLevel: imageRiskLevel(score),
		Details:   &metrics,
	}

	a.logger.Debug().
		Int("risk_score", score).
		Bool("is_masked", report.IsMasked).
		Float64("quality", metrics.QualityScore).
		Float64("structure", metrics.StructureScore).
		Msg("image analyzed")

	return report
}

// qualityScore estimates sharpness from Laplacian variance. Blur suggests
// rescanning or reprinting, both common in sticker overlay attacks.
func (a *ImageAnalyzer) qualityScore(gray *image.Gray) float64 {
	variance := grayops.LaplacianVariance(gray)
	quality := math.Min(100, variance/500*100)

	switch {
	case quality < 50:
		return 40
	case quality < 70:
		return 60
	default:
		return 85
	}
}

// structureScore measures how much of the edge map forms solid
// quadrilateral regions, as QR modules do
func (a *ImageAnalyzer) structureScore(components []grayops.Component) float64 {
	if len(components) == 0 {
		return 0
	}

	quadLike := 0
	for _, c := range components {
		// Square-ish enclosed regions above the speckle size
		if c.BoxArea() > 100 && c.AspectRatio() >= 0.5 && c.AspectRatio() <= 2.0 {
			quadLike++
		}
	}
	return float64(quadLike) / float64(len(components)) * 100
}

// noiseScore compares the image against its median-filtered version. A
// high fraction of outlier pixels indicates splicing or recompression.
func (a *ImageAnalyzer) noiseScore(gray *image.Gray) float64 {
	denoised := grayops.MedianFilter5(gray)
	noisePct := grayops.DiffExceedingPct(gray, denoised, 30)

	switch {
	case noisePct > 15:
		return 20
	case noisePct > 8:
		return 40
	default:
		return 80
	}
}

// symmetryScore compares quadrants of the dominant region. QR codes are
// near-symmetric around the finder patterns; pasted patches break that.
func (a *ImageAnalyzer) symmetryScore(gray *image.Gray, components []grayops.Component) float64 {
	if len(components) == 0 {
		return 30
	}

	largest := components[0]
	for _, c := range components[1:] {
		if c.Area > largest.Area {
			largest = c
		}
	}

	region := grayops.Crop(gray, largest.Bounds)
	b := region.Bounds()
	halfW, halfH := b.Dx()/2, b.Dy()/2
	if halfW == 0 || halfH == 0 {
		return 30
	}

	tl := grayops.Crop(region, image.Rect(0, 0, halfW, halfH))
	tr := grayops.Crop(region, image.Rect(halfW, 0, 2*halfW, halfH))
	bl := grayops.Crop(region, image.Rect(0, halfH, halfW, 2*halfH))
	br := grayops.Crop(region, image.Rect(halfW, halfH, 2*halfW, 2*halfH))

	sims := []float64{
		similarity(tl, tr),
		similarity(tl, bl),
		similarity(bl, br),
	}

	var sum float64
	for _, s := range sims {
		sum += s
	}
	return clampFloat(sum/float64(len(sims)), 0, 100)
}

func similarity(a, b *image.Gray) float64 {
	return 100 - grayops.MeanAbsDiff(a, b)*100/255
}

// finderPatternScore matches the three-ring finder template at multiple
// scales
func (a *ImageAnalyzer) finderPatternScore(gray *image.Gray) float64 {
	template := finderTemplate()

	var sum float64
	scales := []float64{0.8, 1.0, 1.2}
	for _, scale := range scales {
		size := int(math.Round(5 * scale))
		scaled := grayops.ResizeNearest(template, size, size)
		sum += grayops.MatchTemplateMax(gray, scaled)
	}
	avg := sum / float64(len(scales))

	switch {
	case avg > 0.7:
		return 85
	case avg > 0.5:
		return 60
	default:
		return 30
	}
}

// finderTemplate is the 5x5 dark-light-dark ring of a QR finder pattern
func finderTemplate() *image.Gray {
	rows := [5][5]uint8{
		{0, 0, 0, 0, 0},
		{0, 255, 255, 255, 0},
		{0, 255, 0, 255, 0},
		{0, 255, 255, 255, 0},
		{0, 0, 0, 0, 0},
	}
	tmpl := image.NewGray(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			tmpl.Pix[tmpl.PixOffset(x, y)] = rows[y][x]
		}
	}
	return tmpl
}

// imageRiskLevel maps a tampering score to the image analyzer's cut points
func imageRiskLevel(score int) models.RiskLevel {
	switch {
	case score <= 30:
		return models.RiskLow
	case score <= 60:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
