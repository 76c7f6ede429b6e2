package qrdecode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultReadAPIURL = "https://api.qrserver.com/v1/read-qr-code/"

// ReadAPIFallback decodes QR images through the goqr.me read API. It is the
// last resort of the decode chain, used only when every local strategy
// fails.
type ReadAPIFallback struct {
	baseURL    string
	httpClient *http.Client
}

// NewReadAPIFallback creates the external decoder client. An empty baseURL
// selects the public endpoint.
func NewReadAPIFallback(baseURL string, timeout time.Duration) *ReadAPIFallback {
	if baseURL == "" {
		baseURL = defaultReadAPIURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ReadAPIFallback{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Decode uploads the image and returns the first decoded symbol
func (f *ReadAPIFallback) Decode(ctx context.Context, imageData []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "qr.png")
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("decode API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("decode API returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var payload []struct {
		Symbol []struct {
			Data  *string `json:"data"`
			Error *string `json:"error"`
		} `json:"symbol"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	for _, entry := range payload {
		for _, sym := range entry.Symbol {
			if sym.Data != nil && *sym.Data != "" {
				return *sym.Data, nil
			}
		}
	}
	return "", fmt.Errorf("no QR symbol in decode API response")
}
