package domain

import (
	"math"
	"time"
)

// PriceRecord is one historical price observation for an item. Records are
// append-only; they are only removed when the owning item is deleted.
// Consumers order by RecordedAt, not by insertion order, since concurrent
// refresh inserts complete out of request order.
type PriceRecord struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DropResult is the outcome of comparing two price observations.
type DropResult struct {
	IsDrop    bool    `json:"is_drop"`
	PctChange float64 `json:"pct_change"`
}

// DropEvent describes a detected price decrease on an item.
type DropEvent struct {
	ItemID        string  `json:"item_id"`
	Title         string  `json:"title"`
	OldPriceCents int64   `json:"old_price_cents"`
	NewPriceCents int64   `json:"new_price_cents"`
	Currency      string  `json:"currency"`
	PctChange     float64 `json:"pct_change"`
}

// EvaluateDrop compares a previous price against a new observation.
//
//   - No prior price: not a drop, the new price becomes the baseline.
//   - Prior price of zero: not a drop, change reported as 0 to avoid division by zero.
//   - Otherwise PctChange is (old-new)/old*100 rounded to 2 decimals, positive
//     for a decrease; IsDrop is true only for a strict decrease.
func EvaluateDrop(oldPriceCents *int64, newPriceCents int64) DropResult {
	if oldPriceCents == nil {
		return DropResult{}
	}

	old := *oldPriceCents
	if old == 0 {
		return DropResult{}
	}

	pct := roundTo2(float64(old-newPriceCents) / float64(old) * 100)
	return DropResult{
		IsDrop:    old > newPriceCents,
		PctChange: pct,
	}
}

// roundTo2 rounds half away from zero to two decimal places.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
