package domain

import (
	"time"
)

// Shared wishlist visibility values.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
)

// SharedWishlist is the public sharing record for a wishlist, addressed by slug.
type SharedWishlist struct {
	ID                string    `json:"id"`
	WishlistID        string    `json:"wishlist_id"`
	Slug              string    `json:"slug"`
	Visibility        string    `json:"visibility"`
	AllowReservations bool      `json:"allow_reservations"`
	HideReservedItems bool      `json:"hide_reserved_items"`
	ShowReserverNames bool      `json:"show_reserver_names"`
	CreatedAt         time.Time `json:"created_at"`
}

// Reservation status values. An unreserved item simply has no active row.
const (
	ReservationStatusReserved = "reserved"
	ReservationStatusReleased = "released"
)

// Reservation is a guest's hold on a shared wishlist item. At most one row
// per item may carry status "reserved" at any instant.
type Reservation struct {
	ID               string    `json:"id"`
	SharedWishlistID string    `json:"shared_wishlist_id"`
	ItemID           string    `json:"item_id"`
	ReservedByName   string    `json:"reserved_by_name"`
	Status           string    `json:"status"`
	ReservedAt       time.Time `json:"reserved_at"`
}

// IsActive reports whether the reservation still holds the item.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusReserved
}

// OwnerReservation joins an active reservation with its item title for the
// owner's view of who reserved what.
type OwnerReservation struct {
	Reservation
	ItemTitle string `json:"item_title"`
}

// SharedViewItem is an item as exposed to guests visiting a share link.
// ReserverName is populated only when the share shows reserver names.
type SharedViewItem struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	CurrentPriceCents *int64  `json:"current_price_cents,omitempty"`
	Currency          *string `json:"currency,omitempty"`
	Reserved          bool    `json:"reserved"`
	ReserverName      string  `json:"reserver_name,omitempty"`
}

// SharedView is the guest-facing rendering of a shared wishlist.
type SharedView struct {
	Slug              string           `json:"slug"`
	WishlistName      string           `json:"wishlist_name"`
	AllowReservations bool             `json:"allow_reservations"`
	Items             []SharedViewItem `json:"items"`
}
