package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"qrshield/pkg/logger"
)

const safeBrowsingAPIURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// SafeBrowsingChecker queries the Google Safe Browsing v4 lookup API
type SafeBrowsingChecker struct {
	client  *http.Client
	logger  *logger.Logger
	apiKey  string
	baseURL string
}

// NewSafeBrowsingChecker creates a Safe Browsing checker. An empty baseURL
// selects the public API.
func NewSafeBrowsingChecker(apiKey, baseURL string, log *logger.Logger) *SafeBrowsingChecker {
	if baseURL == "" {
		baseURL = safeBrowsingAPIURL
	}
	return &SafeBrowsingChecker{
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  log.WithComponent("safebrowsing"),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

func (c *SafeBrowsingChecker) Name() string { return "safebrowsing" }

type sbRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string `json:"threatTypes"`
		PlatformTypes    []string `json:"platformTypes"`
		ThreatEntryTypes []string `json:"threatEntryTypes"`
		ThreatEntries    []struct {
			URL string `json:"url"`
		} `json:"threatEntries"`
	} `json:"threatInfo"`
}

type sbResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
		Threat     struct {
			URL string `json:"url"`
		} `json:"threat"`
	} `json:"matches"`
}

// Check looks the URL up against the malware, phishing and unwanted
// software threat lists. No matches means no verdict entry, not safety.
func (c *SafeBrowsingChecker) Check(ctx context.Context, target string) (*Verdict, error) {
	payload := sbRequest{}
	payload.Client.ClientID = "qrshield"
	payload.Client.ClientVersion = "1.0"
	payload.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}
	payload.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	payload.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	payload.ThreatInfo.ThreatEntries = []struct {
		URL string `json:"url"`
	}{{URL: target}}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var result sbResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	verdict := &Verdict{
		Source:    c.Name(),
		URL:       target,
		CheckedAt: time.Now().UTC(),
	}
	for _, match := range result.Matches {
		verdict.Malicious = true
		verdict.Categories = append(verdict.Categories, match.ThreatType)
	}
	if verdict.Malicious {
		verdict.Detail = fmt.Sprintf("%d threat list matches", len(result.Matches))
	}
	return verdict, nil
}
