package urlexpand

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"qrshield/pkg/logger"
)

// FailureKind classifies why an expansion failed
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureConnection FailureKind = "connection"
	FailureOther      FailureKind = "request"
)

// Error is a typed expansion failure
type Error struct {
	Kind    FailureKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Expander resolves shortened URLs by following redirects
type Expander interface {
	Expand(ctx context.Context, rawURL string) (string, error)
}

// HTTPExpander follows redirects with a bounded timeout
type HTTPExpander struct {
	client *http.Client
	logger *logger.Logger
}

// NewHTTPExpander creates an expander with the given per-call timeout
func NewHTTPExpander(timeout time.Duration, log *logger.Logger) *HTTPExpander {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPExpander{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("url-expander"),
	}
}

// Expand performs one GET following redirects and returns the final URL
func (e *HTTPExpander) Expand(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{Kind: FailureOther, Message: err.Error()}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	e.logger.Debug().Str("url", rawURL).Str("final", final).Msg("expanded URL")
	return final, nil
}

func classify(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: FailureTimeout, Message: "URL expansion timed out"}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &Error{Kind: FailureTimeout, Message: "URL expansion timed out"}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return &Error{Kind: FailureConnection, Message: "Could not connect to URL"}
		}
	}
	return &Error{Kind: FailureOther, Message: err.Error()}
}
