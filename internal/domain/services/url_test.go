package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"qrshield/internal/domain/models"
)

// fakeExpander returns a canned destination or error
type fakeExpander struct {
	dest string
	err  error
}

func (f *fakeExpander) Expand(ctx context.Context, rawURL string) (string, error) {
	return f.dest, f.err
}

func newTestAnalyzer(expander *fakeExpander) *URLAnalyzer {
	if expander == nil {
		return NewURLAnalyzer(DefaultURLTables(), nil, testLogger())
	}
	return NewURLAnalyzer(DefaultURLTables(), expander, testLogger())
}

func TestAnalyzeInvalidURL(t *testing.T) {
	a := newTestAnalyzer(nil)

	for _, bad := range []string{"not a url", "example.com", "://missing"} {
		got := a.Analyze(context.Background(), bad, false)
		if got.Status != models.StatusError {
			t.Errorf("Analyze(%q).Status = %q, want error", bad, got.Status)
		}
		if got.RiskScore != 100 || got.RiskLevel != models.RiskHigh {
			t.Errorf("Analyze(%q) = %d/%q, want 100/High", bad, got.RiskScore, got.RiskLevel)
		}
	}
}

func TestAnalyzePrivateIPLoginPage(t *testing.T) {
	a := newTestAnalyzer(nil)

	got := a.Analyze(context.Background(), "http://192.168.1.1:8080/login.php", false)
	if got.Status != models.StatusSuccess {
		t.Fatalf("Status = %q, want success", got.Status)
	}
	if got.RiskScore < 65 {
		t.Errorf("RiskScore = %d, want >= 65", got.RiskScore)
	}
	if got.RiskLevel != models.RiskHigh && got.RiskLevel != models.RiskCritical {
		t.Errorf("RiskLevel = %q, want High or Critical", got.RiskLevel)
	}
	if !got.Checks.IPAddress.IsPrivateIP {
		t.Error("expected private IP detection")
	}
	if got.Checks.Structure.Score < 20 {
		t.Errorf("structure score = %d, want >= 20 for non-standard port", got.Checks.Structure.Score)
	}
}

func TestAnalyzeCleanURL(t *testing.T) {
	a := newTestAnalyzer(nil)

	got := a.Analyze(context.Background(), "https://example.org/docs", false)
	if got.Status != models.StatusSuccess {
		t.Fatalf("Status = %q, want success", got.Status)
	}
	if got.RiskLevel != models.RiskLow {
		t.Errorf("RiskLevel = %q (score %d), want Low", got.RiskLevel, got.RiskScore)
	}
	if got.IsShortened {
		t.Error("example.org should not be flagged as a shortener")
	}
}

func TestAnalyzeNoHTTPSEscalation(t *testing.T) {
	a := newTestAnalyzer(nil)

	// Two pattern hits (login, .php) over plain HTTP trigger the floor
	got := a.Analyze(context.Background(), "http://example.org/login.php", false)
	if got.RiskScore < 55 {
		t.Errorf("RiskScore = %d, want >= 55 for http with suspicious patterns", got.RiskScore)
	}
	foundHTTPSWarning := false
	for _, w := range got.Warnings {
		if strings.Contains(w, "not secure") {
			foundHTTPSWarning = true
		}
	}
	if !foundHTTPSWarning {
		t.Errorf("missing HTTPS warning in %v", got.Warnings)
	}
}

func TestAnalyzeSuspiciousTLD(t *testing.T) {
	a := newTestAnalyzer(nil)

	got := a.Analyze(context.Background(), "https://freegift.tk/claim", false)
	if !got.Checks.TLD.IsSuspicious {
		t.Error("expected .tk to be flagged")
	}
	if got.Checks.TLD.Score != 35 {
		t.Errorf("TLD score = %d, want 35", got.Checks.TLD.Score)
	}
}

func TestAnalyzeShortenedFloor(t *testing.T) {
	// Expansion resolves to a benign destination; the shortener penalty
	// still applies on top of the worse of the two scores
	a := newTestAnalyzer(&fakeExpander{dest: "https://example.org/page"})

	got := a.Analyze(context.Background(), "https://bit.ly/abc123", true)
	if !got.IsShortened {
		t.Fatal("bit.ly should be flagged as a shortener")
	}
	if got.ExpandedURL != "https://example.org/page" {
		t.Errorf("ExpandedURL = %q", got.ExpandedURL)
	}
	if got.ExpandedAnalysis == nil {
		t.Fatal("expected expanded analysis")
	}

	plain := a.Analyze(context.Background(), "https://bit.ly/abc123", false)
	if got.RiskScore < plain.RiskScore {
		t.Errorf("expanded scan scored %d, below unexpanded %d", got.RiskScore, plain.RiskScore)
	}
	if got.RiskScore < 40 {
		t.Errorf("RiskScore = %d, want >= 40 shortener penalty", got.RiskScore)
	}
}

func TestAnalyzeShortenedHighRiskDestination(t *testing.T) {
	a := newTestAnalyzer(&fakeExpander{dest: "http://192.168.1.50/verify/login.php"})

	got := a.Analyze(context.Background(), "https://bit.ly/xyz", true)
	if got.ExpandedAnalysis == nil {
		t.Fatal("expected expanded analysis")
	}
	if got.ExpandedAnalysis.RiskScore < 65 {
		t.Fatalf("expanded RiskScore = %d, want >= 65", got.ExpandedAnalysis.RiskScore)
	}
	if got.RiskScore <= got.ExpandedAnalysis.RiskScore {
		t.Errorf("combined score %d should exceed the expanded score %d",
			got.RiskScore, got.ExpandedAnalysis.RiskScore)
	}
	if got.RiskScore > 100 {
		t.Errorf("RiskScore = %d, must stay clamped to 100", got.RiskScore)
	}

	foundExpandedWarning := false
	for _, w := range got.Warnings {
		if strings.Contains(w, "Expanded URL shows high risk") {
			foundExpandedWarning = true
		}
	}
	if !foundExpandedWarning {
		t.Errorf("missing expanded-risk warning in %v", got.Warnings)
	}
}

func TestAnalyzeExpansionFailure(t *testing.T) {
	a := newTestAnalyzer(&fakeExpander{err: errors.New("connection refused")})

	got := a.Analyze(context.Background(), "https://bit.ly/down", true)
	if got.Status != models.StatusSuccess {
		t.Fatalf("Status = %q, expansion failure must not fail the analysis", got.Status)
	}
	if got.ExpandedAnalysis != nil {
		t.Error("no expanded analysis expected on failure")
	}

	found := false
	for _, w := range got.Warnings {
		if strings.Contains(w, "could not expand") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing expansion-failure warning in %v", got.Warnings)
	}
}

func TestAnalyzeShortenerSubdomainMatch(t *testing.T) {
	a := newTestAnalyzer(nil)

	got := a.Analyze(context.Background(), "https://links.bit.ly/abc", false)
	if !got.IsShortened {
		t.Error("subdomain of a shortener should be flagged")
	}
}

func TestAnalyzeKeywordAndPatternCaps(t *testing.T) {
	a := newTestAnalyzer(nil)

	got := a.Analyze(context.Background(),
		"https://login-secure-verify-account-update-confirm.example.org/password/credential/banking", false)
	if got.Checks.Keywords.Score != 50 {
		t.Errorf("keyword score = %d, want capped at 50", got.Checks.Keywords.Score)
	}
	if got.Checks.Patterns.Score != 50 {
		t.Errorf("pattern score = %d, want capped at 50", got.Checks.Patterns.Score)
	}
}

func TestAnalyzeDoubleWeightedKeyword(t *testing.T) {
	a := newTestAnalyzer(nil)

	// "confirm" is listed twice in the keyword table, so a single hit
	// scores 20 instead of 10
	got := a.Analyze(context.Background(), "https://example.org/confirm", false)
	if got.Checks.Keywords.Score != 20 {
		t.Errorf("keyword score = %d, want 20", got.Checks.Keywords.Score)
	}
	if n := len(got.Checks.Keywords.KeywordsFound); n != 2 {
		t.Errorf("keywords found = %d, want 2", n)
	}
}

func TestAnalyzeUserinfoScoresDomainChecks(t *testing.T) {
	a := newTestAnalyzer(nil)

	// The userinfo part stays in the authority string, so a brand name
	// smuggled in front of the @ still trips the lookalike check
	got := a.Analyze(context.Background(), "https://paypal@evil.example/login", false)

	found := false
	for _, d := range got.Checks.Domain.Details {
		if strings.Contains(d, "lookalike") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a lookalike detail, got %v", got.Checks.Domain.Details)
	}
	if got.Checks.Structure.Score < 40 {
		t.Errorf("structure score = %d, want the '@' penalty", got.Checks.Structure.Score)
	}
}

func TestAnalyzeBrandLookalike(t *testing.T) {
	a := newTestAnalyzer(nil)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://paypal.com/account", false},
		{"https://www.paypal.com/account", false},
		{"https://paypal.secure-pay.example.org/login", true},
	}
	for _, tt := range tests {
		got := a.Analyze(context.Background(), tt.url, false)
		found := false
		for _, d := range got.Checks.Domain.Details {
			if strings.Contains(d, "lookalike") {
				found = true
			}
		}
		if found != tt.want {
			t.Errorf("Analyze(%q) lookalike = %v, want %v", tt.url, found, tt.want)
		}
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := newTestAnalyzer(nil)

	first := a.Analyze(context.Background(), "http://10.0.0.1/admin", false)
	second := a.Analyze(context.Background(), "http://10.0.0.1/admin", false)
	if first.RiskScore != second.RiskScore || first.RiskLevel != second.RiskLevel {
		t.Errorf("repeated analysis differs: %d/%q vs %d/%q",
			first.RiskScore, first.RiskLevel, second.RiskScore, second.RiskLevel)
	}
}
