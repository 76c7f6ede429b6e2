package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"qrshield/internal/domain/models"
	"qrshield/internal/urlexpand"
	"qrshield/pkg/logger"
)

// Check weights for the overall risk combination. The https weight is dead
// weight (the check always scores 0) but stays in the sum; dropping it would
// shift every weighted total.
const (
	weightStructure  = 0.15
	weightDomain     = 0.15
	weightTLD        = 0.10
	weightShortener  = 0.10
	weightKeywords   = 0.20
	weightPatterns   = 0.15
	weightHTTPS      = 0.05
	weightLength     = 0.05
	weightSubdomains = 0.03
	weightIPAddress  = 0.02
)

// URLTables holds the static lookup tables for URL analysis
type URLTables struct {
	SuspiciousTLDs     map[string]struct{}
	Shorteners         map[string]struct{}
	PhishingKeywords   []string
	SuspiciousPatterns []string
	KnownBrands        []string
}

// DefaultURLTables returns the built-in lookup tables
func DefaultURLTables() URLTables {
	return URLTables{
		SuspiciousTLDs:     models.SuspiciousTLDs,
		Shorteners:         models.URLShorteners,
		PhishingKeywords:   models.PhishingKeywords,
		SuspiciousPatterns: models.SuspiciousURLPatterns,
		KnownBrands:        models.KnownBrands,
	}
}

// URLAnalyzer performs lexical and structural phishing analysis on URLs
type URLAnalyzer struct {
	tables   URLTables
	expander urlexpand.Expander
	logger   *logger.Logger

	// Compiled patterns
	patterns  []*regexp.Regexp
	ipPattern *regexp.Regexp
}

// NewURLAnalyzer creates a new URL analyzer. The expander may be nil, in
// which case shortened URLs are flagged but never resolved.
func NewURLAnalyzer(tables URLTables, expander urlexpand.Expander, log *logger.Logger) *URLAnalyzer {
	a := &URLAnalyzer{
		tables:    tables,
		expander:  expander,
		logger:    log.WithComponent("url-analyzer"),
		ipPattern: regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`),
	}
	for _, src := range tables.SuspiciousPatterns {
		a.patterns = append(a.patterns, regexp.MustCompile(`(?i)`+src))
	}
	return a
}

// Analyze runs the full URL risk analysis. Shortened URLs are resolved one
// level deep when expandShortened is set; expansion failures degrade to a
// warning and analysis continues on the original URL.
func (a *URLAnalyzer) Analyze(ctx context.Context, rawURL string, expandShortened bool) *models.URLReport {
	result := &models.URLReport{
		Status:    models.StatusSuccess,
		URL:       rawURL,
		RiskLevel: models.RiskUnknown,
		Warnings:  []string{},
	}

	parsed, ok := a.parseValid(rawURL)
	if !ok {
		result.Status = models.StatusError
		result.Message = "Invalid URL format"
		result.RiskScore = 100
		result.RiskLevel = models.RiskHigh
		result.Recommendation = "Do not visit this URL"
		return result
	}
	result.IsValid = true

	var expansionWarning string
	if a.isShortened(parsed) {
		result.IsShortened = true

		if expandShortened && a.expander != nil {
			expanded, err := a.expander.Expand(ctx, rawURL)
			if err != nil {
				expansionWarning = fmt.Sprintf("URL shortener detected - could not expand: %s", expansionMessage(err))
				a.logger.Warn().Err(err).Str("url", rawURL).Msg("URL expansion failed")
			} else {
				result.ExpandedURL = expanded
				if _, valid := a.parseValid(expanded); valid {
					result.ExpandedAnalysis = a.analyzeFull(expanded)
				}
			}
		}
	}

	checks := a.runChecks(rawURL, parsed)
	result.Checks = checks

	baseRisk := a.calculateOverallRisk(checks)

	expandedRisk := 0
	if result.ExpandedAnalysis != nil {
		expandedRisk = result.ExpandedAnalysis.RiskScore
	}

	finalRisk := baseRisk
	if result.IsShortened {
		// Obfuscation itself is risk: a flat penalty on top of the worse of
		// the two scores, boosted again when the destination is suspicious
		finalRisk = minInt(100, maxInt(baseRisk, expandedRisk)+40)
		if expandedRisk > 50 {
			finalRisk = maxInt(finalRisk, (baseRisk+expandedRisk)/2+35)
			finalRisk = minInt(100, finalRisk)
		}
	}

	result.RiskScore = models.ClampScore(finalRisk)
	result.RiskLevel = urlRiskLevel(result.RiskScore)
	result.Warnings = a.collectWarnings(checks, result.IsShortened, expandedRisk)
	if expansionWarning != "" {
		result.Warnings = append(result.Warnings, expansionWarning)
	}
	result.Recommendation = a.recommendation(result.RiskScore, result.IsShortened)

	a.logger.Debug().
		Str("url", rawURL).
		Int("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Bool("shortened", result.IsShortened).
		Msg("URL analyzed")

	return result
}

// analyzeFull analyzes an expanded destination URL without further expansion
func (a *URLAnalyzer) analyzeFull(rawURL string) *models.URLReport {
	parsed, ok := a.parseValid(rawURL)
	if !ok {
		return &models.URLReport{
			Status:    models.StatusError,
			URL:       rawURL,
			RiskScore: 100,
			RiskLevel: models.RiskHigh,
			Warnings:  []string{"Invalid URL"},
		}
	}

	checks := a.runChecks(rawURL, parsed)
	score := a.calculateOverallRisk(checks)

	return &models.URLReport{
		Status:         models.StatusSuccess,
		URL:            rawURL,
		IsValid:        true,
		RiskScore:      score,
		RiskLevel:      urlRiskLevel(score),
		Checks:         checks,
		Warnings:       a.collectWarnings(checks, false, 0),
		Recommendation: a.recommendation(score, false),
	}
}

func (a *URLAnalyzer) parseValid(rawURL string) (*url.URL, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, false
	}
	return parsed, true
}

// isShortened checks exact and subdomain matches against the shortener set
func (a *URLAnalyzer) isShortened(parsed *url.URL) bool {
	domain := strings.ToLower(parsed.Host)
	if _, ok := a.tables.Shorteners[domain]; ok {
		return true
	}
	for shortener := range a.tables.Shorteners {
		if strings.HasSuffix(domain, "."+shortener) {
			return true
		}
	}
	return false
}

func (a *URLAnalyzer) runChecks(rawURL string, parsed *url.URL) *models.URLChecks {
	return &models.URLChecks{
		Structure:  a.checkStructure(rawURL, parsed),
		Domain:     a.checkDomain(parsed),
		TLD:        a.checkTLD(parsed),
		Shortener:  a.checkShortener(parsed),
		Keywords:   a.checkKeywords(rawURL),
		Patterns:   a.checkPatterns(rawURL),
		HTTPS:      a.checkHTTPS(parsed),
		Length:     a.checkLength(rawURL),
		Subdomains: a.checkSubdomains(parsed),
		IPAddress:  a.checkIPAddress(parsed),
	}
}

func (a *URLAnalyzer) checkStructure(rawURL string, parsed *url.URL) models.StructureCheck {
	check := models.StructureCheck{Details: []string{}}

	if strings.Contains(rawURL, "@") {
		check.Score += 40
		check.Details = append(check.Details, "Contains '@' symbol (potential redirect)")
	}

	if port := parsed.Port(); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n != 80 && n != 443 {
			check.Score += 20
			check.Details = append(check.Details, fmt.Sprintf("Non-standard port: %d", n))
		}
	}

	// Matched against host:port, so a raw IP with an explicit port lands in
	// the IP check instead
	if a.ipPattern.MatchString(parsed.Host) {
		check.Score += 35
		check.Details = append(check.Details, "Uses IP address instead of domain name")
	}

	check.IsSuspicious = check.Score > 0
	return check
}

// netlocOf returns the host part with any userinfo prefix kept, so
// credential-stuffed lures like paypal@evil.example score the domain
// checks on the full authority string.
func netlocOf(parsed *url.URL) string {
	if parsed.User != nil {
		return parsed.User.String() + "@" + parsed.Host
	}
	return parsed.Host
}

func (a *URLAnalyzer) checkDomain(parsed *url.URL) models.DomainCheck {
	check := models.DomainCheck{Details: []string{}}
	domain := netlocOf(parsed)

	if strings.Contains(domain, "-") {
		check.Score += 15
		check.Details = append(check.Details, "Domain contains hyphens")
	}
	if strings.ContainsAny(domain, "0123456789") {
		check.Score += 20
		check.Details = append(check.Details, "Domain contains numbers")
	}
	if len(domain) > 30 {
		check.Score += 15
		check.Details = append(check.Details, "Unusually long domain name")
	}
	if strings.Count(domain, ".") > 2 {
		check.Score += 15
		check.Details = append(check.Details, "Multiple subdomains")
	}

	domainLower := strings.ToLower(domain)
	for _, brand := range a.tables.KnownBrands {
		if strings.Contains(domainLower, brand) &&
			domainLower != "www."+brand+".com" && domainLower != brand+".com" {
			check.Score += 25
			check.Details = append(check.Details, fmt.Sprintf("Possible lookalike domain for %s", brand))
			break
		}
	}

	check.IsSuspicious = check.Score > 0
	return check
}

func (a *URLAnalyzer) checkTLD(parsed *url.URL) models.TLDCheck {
	check := models.TLDCheck{}

	parts := strings.Split(parsed.Host, ".")
	if len(parts) >= 2 {
		check.TLD = "." + parts[len(parts)-1]
	}

	if _, ok := a.tables.SuspiciousTLDs[strings.ToLower(check.TLD)]; ok {
		check.IsSuspicious = true
		check.Score = 35
	}
	return check
}

func (a *URLAnalyzer) checkShortener(parsed *url.URL) models.ShortenerCheck {
	check := models.ShortenerCheck{}
	domain := strings.ToLower(parsed.Host)

	if _, ok := a.tables.Shorteners[domain]; ok {
		check.IsShortener = true
		check.Score = 25
		check.Warning = "URL shortener detected (masks original URL)"
	}
	return check
}

func (a *URLAnalyzer) checkKeywords(rawURL string) models.KeywordCheck {
	check := models.KeywordCheck{KeywordsFound: []string{}}
	urlLower := strings.ToLower(rawURL)

	for _, keyword := range a.tables.PhishingKeywords {
		if strings.Contains(urlLower, keyword) {
			check.KeywordsFound = append(check.KeywordsFound, keyword)
		}
	}

	check.Score = minInt(len(check.KeywordsFound)*10, 50)
	check.IsSuspicious = len(check.KeywordsFound) > 0
	return check
}

func (a *URLAnalyzer) checkPatterns(rawURL string) models.PatternCheck {
	check := models.PatternCheck{Patterns: []string{}}

	for i, pattern := range a.patterns {
		if pattern.MatchString(rawURL) {
			check.Patterns = append(check.Patterns, a.tables.SuspiciousPatterns[i])
		}
	}

	check.Score = minInt(len(check.Patterns)*15, 50)
	check.IsSuspicious = len(check.Patterns) > 0
	return check
}

func (a *URLAnalyzer) checkHTTPS(parsed *url.URL) models.HTTPSCheck {
	check := models.HTTPSCheck{
		IsHTTPS: strings.EqualFold(parsed.Scheme, "https"),
	}
	if !check.IsHTTPS {
		check.Warning = "URL does not use HTTPS"
	}
	return check
}

func (a *URLAnalyzer) checkLength(rawURL string) models.LengthCheck {
	length := len(rawURL)
	switch {
	case length > 200:
		return models.LengthCheck{Length: length, Score: 25, IsSuspicious: true, Warning: "Unusually long URL"}
	case length > 100:
		return models.LengthCheck{Length: length, Score: 10, IsSuspicious: true, Warning: "Long URL (possible obfuscation)"}
	}
	return models.LengthCheck{Length: length}
}

func (a *URLAnalyzer) checkSubdomains(parsed *url.URL) models.SubdomainCheck {
	count := strings.Count(netlocOf(parsed), ".") - 1
	if count < 0 {
		count = 0
	}
	if count > 3 {
		return models.SubdomainCheck{Count: count, Score: 20, IsSuspicious: true, Warning: "Multiple subdomains (possible phishing)"}
	}
	return models.SubdomainCheck{Count: count}
}

func (a *URLAnalyzer) checkIPAddress(parsed *url.URL) models.IPCheck {
	check := models.IPCheck{}

	hostname := parsed.Host
	if idx := strings.Index(hostname, ":"); idx >= 0 {
		hostname = hostname[:idx]
	}

	if !a.ipPattern.MatchString(hostname) {
		return check
	}
	check.IsIPAddress = true

	octets := strings.Split(hostname, ".")
	first, _ := strconv.Atoi(octets[0])
	second, _ := strconv.Atoi(octets[1])

	// Private ranges: 10.x.x.x, 192.168.x.x, 172.16-31.x.x
	if first == 10 || (first == 192 && second == 168) || (first == 172 && second >= 16 && second <= 31) {
		check.IsPrivateIP = true
	}

	if check.IsPrivateIP {
		check.Score = 50
		check.Warning = "Uses private IP address (highly suspicious)"
	} else {
		check.Score = 35
		check.Warning = "Uses IP address instead of domain"
	}
	return check
}

// calculateOverallRisk combines the weighted sub-scores and applies the
// high-risk escalation floors
func (a *URLAnalyzer) calculateOverallRisk(checks *models.URLChecks) int {
	total := float64(checks.Structure.Score)*weightStructure +
		float64(checks.Domain.Score)*weightDomain +
		float64(checks.TLD.Score)*weightTLD +
		float64(checks.Shortener.Score)*weightShortener +
		float64(checks.Keywords.Score)*weightKeywords +
		float64(checks.Patterns.Score)*weightPatterns +
		0*weightHTTPS +
		float64(checks.Length.Score)*weightLength +
		float64(checks.Subdomains.Score)*weightSubdomains +
		float64(checks.IPAddress.Score)*weightIPAddress

	base := minInt(100, int(total))

	if checks.IPAddress.IsPrivateIP {
		if checks.Patterns.Score > 0 {
			// Private IP serving login-style paths is almost always phishing
			base = maxInt(base, 65)
		}
		base = maxInt(base, 40)
	}

	if !checks.HTTPS.IsHTTPS && checks.Patterns.Score >= 15 {
		base = maxInt(base, 55)
	}

	return minInt(100, base)
}

// urlRiskLevel maps a score to the URL analyzer's cut points
func urlRiskLevel(score int) models.RiskLevel {
	switch {
	case score <= 25:
		return models.RiskLow
	case score <= 50:
		return models.RiskMedium
	case score <= 75:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func (a *URLAnalyzer) collectWarnings(checks *models.URLChecks, isShortened bool, expandedRisk int) []string {
	warnings := []string{}

	if checks.Structure.IsSuspicious {
		warnings = append(warnings, "Suspicious URL structure detected")
	}
	if checks.TLD.IsSuspicious {
		warnings = append(warnings, "Suspicious domain extension")
	}
	if checks.Shortener.IsShortener {
		warnings = append(warnings, "URL shortener masks original destination")
	}
	if !checks.HTTPS.IsHTTPS {
		warnings = append(warnings, "Connection is not secure (no HTTPS)")
	}
	if checks.Length.IsSuspicious {
		warnings = append(warnings, "Unusually long URL")
	}
	if checks.Subdomains.IsSuspicious {
		warnings = append(warnings, "Abnormal number of subdomains")
	}
	if checks.IPAddress.Warning != "" {
		warnings = append(warnings, "Uses IP address instead of domain")
	}
	if checks.Keywords.IsSuspicious {
		warnings = append(warnings, "Contains phishing-related keywords")
	}
	if checks.Patterns.IsSuspicious {
		warnings = append(warnings, "Contains suspicious URL patterns")
	}

	if isShortened {
		warnings = append(warnings, "URL uses a shortening service (true destination hidden)")
	}

	if expandedRisk > 50 {
		warnings = append(warnings, fmt.Sprintf("Expanded URL shows high risk (%d/100)", expandedRisk))
	} else if expandedRisk > 0 && expandedRisk <= 25 {
		warnings = append(warnings, fmt.Sprintf("Expanded URL shows some risk (%d/100)", expandedRisk))
	}

	return warnings
}

func (a *URLAnalyzer) recommendation(score int, isShortened bool) string {
	if isShortened {
		switch {
		case score >= 80:
			return "CRITICAL RISK - URL shortener hides potentially malicious destination. Do not visit."
		case score >= 60:
			return "HIGH RISK - Shortened URL leads to suspicious destination. Not recommended."
		case score >= 40:
			return "MODERATE RISK - Exercise extreme caution with shortened URLs."
		}
	}

	switch {
	case score <= 25:
		return "Proceed with caution - URL appears relatively safe but always verify"
	case score <= 50:
		return "Exercise caution - Some suspicious elements detected"
	case score <= 75:
		return "High risk detected - Not recommended to visit this URL"
	default:
		return "CRITICAL RISK - Do not visit this URL under any circumstances"
	}
}

func expansionMessage(err error) string {
	if e, ok := err.(*urlexpand.Error); ok {
		return e.Message
	}
	return err.Error()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
