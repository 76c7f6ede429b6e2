package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"qrshield/pkg/logger"
)

const virusTotalAPIURL = "https://www.virustotal.com/api/v3"

// VirusTotalChecker submits a URL for analysis and polls for the verdict
type VirusTotalChecker struct {
	client       *http.Client
	logger       *logger.Logger
	apiKey       string
	baseURL      string
	pollDelay    time.Duration
	pollAttempts int
}

// NewVirusTotalChecker creates a VirusTotal checker. An empty baseURL
// selects the public API.
func NewVirusTotalChecker(apiKey, baseURL string, pollDelay time.Duration, log *logger.Logger) *VirusTotalChecker {
	if baseURL == "" {
		baseURL = virusTotalAPIURL
	}
	if pollDelay <= 0 {
		pollDelay = 3 * time.Second
	}
	return &VirusTotalChecker{
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       log.WithComponent("virustotal"),
		apiKey:       apiKey,
		baseURL:      baseURL,
		pollDelay:    pollDelay,
		pollAttempts: 5,
	}
}

func (c *VirusTotalChecker) Name() string { return "virustotal" }

type vtSubmitResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type vtAnalysisResponse struct {
	Data struct {
		Attributes struct {
			Status string `json:"status"`
			Stats  struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless   int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// Check submits the URL and polls the analysis endpoint until the scan
// completes or the attempt budget runs out
func (c *VirusTotalChecker) Check(ctx context.Context, target string) (*Verdict, error) {
	analysisID, err := c.submit(ctx, target)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < c.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}

		analysis, err := c.fetchAnalysis(ctx, analysisID)
		if err != nil {
			return nil, err
		}
		if analysis.Data.Attributes.Status != "completed" {
			continue
		}

		stats := analysis.Data.Attributes.Stats
		verdict := &Verdict{
			Source:     c.Name(),
			URL:        target,
			Malicious:  stats.Malicious > 0,
			Suspicious: stats.Suspicious > 0,
			Detail: fmt.Sprintf("%d malicious, %d suspicious of %d engines",
				stats.Malicious, stats.Suspicious,
				stats.Malicious+stats.Suspicious+stats.Harmless+stats.Undetected),
			CheckedAt: time.Now().UTC(),
		}
		return verdict, nil
	}

	return nil, fmt.Errorf("analysis did not complete after %d polls", c.pollAttempts)
}

func (c *VirusTotalChecker) submit(ctx context.Context, target string) (string, error) {
	form := url.Values{"url": {target}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("submit returned status %d", resp.StatusCode)
	}

	var submitted vtSubmitResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&submitted); err != nil {
		return "", fmt.Errorf("failed to parse submit response: %w", err)
	}
	if submitted.Data.ID == "" {
		return "", fmt.Errorf("submit response missing analysis id")
	}
	return submitted.Data.ID, nil
}

func (c *VirusTotalChecker) fetchAnalysis(ctx context.Context, id string) (*vtAnalysisResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/analyses/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis returned status %d", resp.StatusCode)
	}

	var analysis vtAnalysisResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &analysis, nil
}
