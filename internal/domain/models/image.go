package models

// ImageMetrics holds the five independent tampering metrics, each on a
// 0-100 scale where higher means less suspicious
type ImageMetrics struct {
	QualityScore       float64 `json:"quality_score"`
	StructureScore     float64 `json:"structure_score"`
	NoiseScore         float64 `json:"noise_score"`
	SymmetryScore      float64 `json:"symmetry_score"`
	FinderPatternScore float64 `json:"finder_pattern_score"`
}

// ImageReport is the result of analyzing a QR image for tampering
type ImageReport struct {
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	IsMasked    bool          `json:"is_masked"`
	RiskScore   int           `json:"risk_score"`
	RiskLevel   RiskLevel     `json:"risk_level"`
	DecodedData string        `json:"decoded_data,omitempty"`
	Details     *ImageMetrics `json:"analysis_details,omitempty"`
}
