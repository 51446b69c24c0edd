package domain

import (
	"time"
)

// Wishlist is the owning container for items. Creation and general CRUD live
// outside this service; the tracker only needs ownership and naming.
type Wishlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistItem is a tracked entry on a wishlist. Price fields are in cents
// (fixed-point, 2 fractional digits). SourceURL is nil for hand-entered items,
// which are skipped by price refresh.
type WishlistItem struct {
	ID                string     `json:"id"`
	WishlistID        string     `json:"wishlist_id"`
	Title             string     `json:"title"`
	SourceURL         *string    `json:"source_url,omitempty"`
	CurrentPriceCents *int64     `json:"current_price_cents,omitempty"`
	Currency          *string    `json:"currency,omitempty"`
	LastCheckedAt     *time.Time `json:"last_checked_at,omitempty"`
	AlertEnabled      bool       `json:"alert_enabled"`
	AlertTargetCents  *int64     `json:"alert_target_cents,omitempty"`

	// LastTargetAlertCents records the price at which the most recent
	// under-target notification fired. It stays set while the price remains
	// at or below the target and is cleared when the price rises above it,
	// so the notification fires once per crossing.
	LastTargetAlertCents *int64 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Trackable reports whether the item can be re-checked automatically.
func (i *WishlistItem) Trackable() bool {
	return i.SourceURL != nil && *i.SourceURL != ""
}

// UnderTarget reports whether the current price sits at or below the alert target.
func (i *WishlistItem) UnderTarget() bool {
	return i.AlertEnabled &&
		i.AlertTargetCents != nil &&
		i.CurrentPriceCents != nil &&
		*i.CurrentPriceCents <= *i.AlertTargetCents
}
