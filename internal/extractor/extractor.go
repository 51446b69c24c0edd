// Package extractor resolves the current price of a product page through an
// external extraction service.
package extractor

import (
	"context"
)

// Result is the outcome of a price extraction. PriceCents is nil when the
// extractor reached the page but found no price on it.
type Result struct {
	PriceCents *int64 `json:"price_cents"`
	Currency   string `json:"currency"`
}

// Extractor resolves the current price of a product URL.
type Extractor interface {
	Extract(ctx context.Context, sourceURL string) (*Result, error)
}
