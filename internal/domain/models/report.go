package models

// RiskLevel is an ordered categorical rating derived from a risk score.
// Each analyzer uses its own cut points; see the analyzer implementations.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
	RiskUnknown  RiskLevel = "Unknown"
)

// severityRank orders risk levels for cross-analyzer comparison
var severityRank = map[RiskLevel]int{
	RiskUnknown:  0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// MaxRiskLevel returns the more severe of two risk levels
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// Status represents the outcome of an analysis call
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ClampScore bounds a risk score to [0, 100]
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
