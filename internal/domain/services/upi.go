package services

import (
	"fmt"
	"regexp"
	"strings"

	"qrshield/internal/domain/models"
	"qrshield/pkg/logger"
)

// UPIValidator validates UPI payment identifiers and scores their suffix
// against a static bank table
type UPIValidator struct {
	banks  map[string]models.BankRecord
	logger *logger.Logger

	// Compiled patterns
	idPattern     *regexp.Regexp
	suffixPattern *regexp.Regexp
}

// NewUPIValidator creates a new UPI validator with the given suffix table
func NewUPIValidator(banks map[string]models.BankRecord, log *logger.Logger) *UPIValidator {
	return &UPIValidator{
		banks:         banks,
		logger:        log.WithComponent("upi-validator"),
		idPattern:     regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`),
		suffixPattern: regexp.MustCompile(`^[a-zA-Z0-9]+$`),
	}
}

// CheckInvalidPattern runs the pattern-fraud pre-check on a UPI identifier.
// Empty input passes; identifiers with more than one separator, or with an
// out-of-bounds prefix or suffix, fail.
func (v *UPIValidator) CheckInvalidPattern(upiID string) models.UPIPatternCheck {
	result := models.UPIPatternCheck{
		IsValid: true,
		UPIID:   upiID,
	}

	if upiID == "" {
		return result
	}

	atCount := strings.Count(upiID, "@")
	if atCount > 1 {
		result.IsValid = false
		result.ErrorType = models.UPIErrMultipleAtSymbols
		result.ErrorMessage = fmt.Sprintf("Invalid UPI ID - Contains %d @ symbols (suspicious pattern detected)", atCount)
		return result
	}

	if atCount == 1 {
		parts := strings.SplitN(upiID, "@", 2)
		prefix, suffix := parts[0], strings.ToLower(parts[1])

		if len(prefix) < 2 {
			result.IsValid = false
			result.ErrorType = models.UPIErrInvalidPrefix
			result.ErrorMessage = "Invalid UPI ID - Username part too short (less than 2 characters)"
			return result
		}
		if len(prefix) > 256 {
			result.IsValid = false
			result.ErrorType = models.UPIErrInvalidPrefix
			result.ErrorMessage = "Invalid UPI ID - Username part too long (more than 256 characters)"
			return result
		}

		if len(suffix) < 2 {
			result.IsValid = false
			result.ErrorType = models.UPIErrInvalidSuffix
			result.ErrorMessage = "Invalid UPI ID - Bank/App code too short (less than 2 characters)"
			return result
		}
		if len(suffix) > 64 {
			result.IsValid = false
			result.ErrorType = models.UPIErrInvalidSuffix
			result.ErrorMessage = "Invalid UPI ID - Bank/App code too long (more than 64 characters)"
			return result
		}
		if !v.suffixPattern.MatchString(suffix) {
			result.IsValid = false
			result.ErrorType = models.UPIErrInvalidSuffix
			result.ErrorMessage = "Invalid UPI ID - Bank/App code contains invalid characters"
			return result
		}
	}

	return result
}

// Verify checks the identifier against the strict UPI format and scores its
// suffix against the bank table. Inputs that do not match the format at all
// resolve to an indeterminate fail-closed report.
func (v *UPIValidator) Verify(upiID string) *models.UPIReport {
	if !v.idPattern.MatchString(upiID) {
		return &models.UPIReport{
			Status:    models.UPIStatusIndeterminate,
			UPIID:     upiID,
			Message:   "UPI ID does not match the expected user@provider format",
			RiskScore: 100,
			RiskLevel: models.RiskHigh,
		}
	}

	idx := strings.LastIndex(upiID, "@")
	suffix := strings.ToLower(upiID[idx+1:])

	record, ok := v.banks[suffix]
	if !ok {
		return &models.UPIReport{
			Status:    models.UPIStatusFail,
			UPIID:     upiID,
			Bank:      models.UnknownBankName,
			RiskScore: normalizeBaseRisk(models.UPIMaxBaseRisk),
			RiskLevel: models.RiskHigh,
		}
	}

	baseRisk := record.Risk
	var level models.RiskLevel
	switch {
	case baseRisk == 0:
		// Degenerate table entry: force to the ceiling
		baseRisk = models.UPIMaxBaseRisk
		level = models.RiskHigh
	case baseRisk <= 10:
		level = models.RiskLow
	case baseRisk <= 20:
		level = models.RiskMedium
	default:
		level = models.RiskHigh
	}

	return &models.UPIReport{
		Status:    models.UPIStatusSuccess,
		UPIID:     upiID,
		Bank:      record.Bank,
		RiskScore: normalizeBaseRisk(baseRisk),
		RiskLevel: level,
	}
}

// Validate runs the full two-phase contract: pattern-fraud pre-check, then
// structural verification and risk lookup. Never returns nil.
func (v *UPIValidator) Validate(upiID string) *models.UPIReport {
	check := v.CheckInvalidPattern(upiID)
	if !check.IsValid {
		v.logger.Debug().
			Str("upi_id", upiID).
			Str("error_type", check.ErrorType).
			Msg("UPI pattern pre-check failed")
		return &models.UPIReport{
			Status:    models.UPIStatusInvalid,
			UPIID:     upiID,
			Message:   check.ErrorMessage,
			RiskScore: 100,
			RiskLevel: models.RiskHigh,
		}
	}
	return v.Verify(upiID)
}

// Banks returns the static suffix table
func (v *UPIValidator) Banks() map[string]models.BankRecord {
	return v.banks
}

// normalizeBaseRisk maps a raw base risk in [min,max] linearly onto [0,100]
func normalizeBaseRisk(baseRisk int) int {
	normalized := (baseRisk - models.UPIMinBaseRisk) * 100 /
		(models.UPIMaxBaseRisk - models.UPIMinBaseRisk)
	return models.ClampScore(normalized)
}
