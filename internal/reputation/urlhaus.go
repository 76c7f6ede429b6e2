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

const urlhausAPIURL = "https://urlhaus-api.abuse.ch/v1/url/"

// URLhausChecker queries the Abuse.ch URLhaus lookup API
type URLhausChecker struct {
	client  *http.Client
	logger  *logger.Logger
	authKey string
	baseURL string
}

// NewURLhausChecker creates a URLhaus checker. authKey may be empty; the
// lookup endpoint works unauthenticated at a lower rate limit.
func NewURLhausChecker(authKey, baseURL string, log *logger.Logger) *URLhausChecker {
	if baseURL == "" {
		baseURL = urlhausAPIURL
	}
	return &URLhausChecker{
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  log.WithComponent("urlhaus"),
		authKey: authKey,
		baseURL: baseURL,
	}
}

func (c *URLhausChecker) Name() string { return "urlhaus" }

type urlhausResponse struct {
	QueryStatus string `json:"query_status"`
	URLStatus   string `json:"url_status"`
	Threat      string `json:"threat"`
	Tags        []string `json:"tags"`
}

// Check looks the URL up in the URLhaus database. query_status "no_results"
// means the URL is unknown, not clean.
func (c *URLhausChecker) Check(ctx context.Context, target string) (*Verdict, error) {
	form := url.Values{"url": {target}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.authKey != "" {
		req.Header.Set("Auth-Key", c.authKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var result urlhausResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	verdict := &Verdict{
		Source:    c.Name(),
		URL:       target,
		CheckedAt: time.Now().UTC(),
	}

	switch result.QueryStatus {
	case "ok":
		verdict.Malicious = true
		verdict.Categories = result.Tags
		verdict.Detail = fmt.Sprintf("listed as %s (%s)", result.Threat, result.URLStatus)
	case "no_results":
		// Unknown URL
	default:
		return nil, fmt.Errorf("unexpected query_status %q", result.QueryStatus)
	}
	return verdict, nil
}
