package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPExtractor calls an external price extraction service over HTTP.
type HTTPExtractor struct {
	client  HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewHTTPExtractor creates an extractor backed by the extraction service at baseURL.
func NewHTTPExtractor(client HTTPDoer, baseURL string, logger *slog.Logger) *HTTPExtractor {
	return &HTTPExtractor{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	PriceCents *int64 `json:"price_cents"`
	Currency   string `json:"currency"`
}

// Extract asks the extraction service for the current price of sourceURL.
func (e *HTTPExtractor) Extract(ctx context.Context, sourceURL string) (*Result, error) {
	body, err := json.Marshal(extractRequest{URL: sourceURL})
	if err != nil {
		return nil, fmt.Errorf("marshal extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call extraction service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// The service reached the page but could not parse a price.
		io.Copy(io.Discard, resp.Body)
		return &Result{}, nil
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, apperrors.ServiceUnavailable("extraction service is unavailable")
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode extract response: %w", err)
	}

	return &Result{PriceCents: out.PriceCents, Currency: out.Currency}, nil
}
