// Package review performs the review exchange: one POST of raw code to the
// review endpoint and one JSON response carrying a feedback field.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const (
	// DefaultEndpoint is where the form sends code unless configured otherwise.
	DefaultEndpoint = "http://localhost:8081/api/review"

	// ErrorFeedback is shown for every failed exchange.
	ErrorFeedback = "Error: Unable to get review."
)

// ErrExchangeFailed wraps every transport, read and parse failure.
var ErrExchangeFailed = errors.New("review exchange failed")

// Reviewer sends code for review and returns the feedback text.
type Reviewer interface {
	Review(ctx context.Context, code string) (string, error)
}

// Client talks to the review endpoint over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewClient creates a client for endpoint. The underlying http.Client has no
// timeout; callers cancel through the context.
func NewClient(endpoint string, logger *slog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{},
		logger:   logger,
	}
}

// Endpoint returns the URL reviews are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Review posts code as text/plain and extracts the feedback field from the
// JSON response. Status codes are not inspected.
func (c *Client) Review(ctx context.Context, code string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBufferString(code))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %w", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrExchangeFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("review endpoint returned non-success status",
			"status", resp.StatusCode,
			"endpoint", c.endpoint)
	}

	feedback, err := ExtractFeedback(body)
	if err != nil {
		return "", fmt.Errorf("%w: parsing response: %w", ErrExchangeFailed, err)
	}
	return feedback, nil
}

// ExtractFeedback parses body as JSON and returns its feedback field.
//
// A missing or null field, or a document that is not an object, yields "".
// Strings are returned verbatim; booleans render as ""; other values are
// returned as their JSON text. A body of JSON null is an error, as is any
// body that is not valid JSON.
func ExtractFeedback(body []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", err
	}
	if doc == nil {
		return "", errors.New("response body is null")
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return "", nil
	}

	switch v := obj["feedback"].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return "", nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}
