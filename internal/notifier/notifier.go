// Package notifier dispatches user-facing notifications. The policy of
// whether to notify lives in the alert service; the notifier only delivers.
package notifier

import (
	"context"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
)

// Notification kinds.
const (
	KindPriceDrop   = "price_drop"
	KindUnderTarget = "under_target"
)

// UnderTargetInfo carries the payload of an under-target notification.
type UnderTargetInfo struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	PriceCents  int64  `json:"price_cents"`
	TargetCents int64  `json:"target_cents"`
	Currency    string `json:"currency"`
}

// Notifier delivers notifications to a user.
type Notifier interface {
	// NotifyPriceDrop tells the user the price of an item dropped.
	NotifyPriceDrop(ctx context.Context, userID string, drop *domain.DropEvent) error

	// NotifyUnderTarget tells the user an item's price crossed under its target.
	NotifyUnderTarget(ctx context.Context, userID string, info *UnderTargetInfo) error
}
