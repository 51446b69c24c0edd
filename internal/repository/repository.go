package repository

import (
	"context"
	"time"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
)

// ItemRepository defines persistence operations for wishlists and their items.
type ItemRepository interface {
	// GetWishlist retrieves a wishlist by its unique identifier.
	GetWishlist(ctx context.Context, id string) (*domain.Wishlist, error)

	// GetItem retrieves a single wishlist item by its unique identifier.
	GetItem(ctx context.Context, id string) (*domain.WishlistItem, error)

	// ListByWishlist returns all items belonging to a wishlist, newest first.
	ListByWishlist(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error)

	// ListTrackable returns items of a wishlist that have a source URL and
	// are therefore eligible for price refresh.
	ListTrackable(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error)

	// UpdatePrice sets the current price, currency and last-checked timestamp
	// of an item.
	UpdatePrice(ctx context.Context, itemID string, priceCents int64, currency string, checkedAt time.Time) error

	// TouchChecked updates only the last-checked timestamp of an item.
	TouchChecked(ctx context.Context, itemID string, checkedAt time.Time) error

	// SetLastTargetAlert records (or clears, when nil) the price at which the
	// most recent under-target alert for an item fired.
	SetLastTargetAlert(ctx context.Context, itemID string, priceCents *int64) error

	// ListWithTargets returns all items across a user's wishlists that have a
	// target price configured, together with their wishlist names.
	ListWithTargets(ctx context.Context, userID string) ([]domain.TargetedItem, error)
}

// PriceHistoryRepository defines persistence operations for the append-only
// price record ledger.
type PriceHistoryRepository interface {
	// Append inserts a new price record for an item.
	Append(ctx context.Context, rec *domain.PriceRecord) error

	// Oldest returns the earliest recorded price for an item.
	Oldest(ctx context.Context, itemID string) (*domain.PriceRecord, error)

	// List returns an item's price records, newest first, with the total count.
	List(ctx context.Context, itemID string, page, perPage int) ([]domain.PriceRecord, int, error)
}

// SettingsRepository defines persistence operations for per-user alert settings.
type SettingsRepository interface {
	// Get retrieves the alert settings for a user.
	Get(ctx context.Context, userID string) (*domain.AlertSettings, error)

	// Upsert inserts or fully replaces the alert settings for a user.
	Upsert(ctx context.Context, s *domain.AlertSettings) error
}

// StoreRepository defines persistence operations for stores and their
// per-country shipping rules.
type StoreRepository interface {
	// CreateStore inserts a new store.
	CreateStore(ctx context.Context, s *domain.Store) error

	// GetStore retrieves a store by its unique identifier.
	GetStore(ctx context.Context, id string) (*domain.Store, error)

	// ListStores returns all stores ordered by name.
	ListStores(ctx context.Context) ([]domain.Store, error)

	// AddShippingRule inserts a shipping rule for a store. At most one rule
	// may exist per store and country.
	AddShippingRule(ctx context.Context, r *domain.ShippingRule) error

	// GetRule retrieves the shipping rule of a store for a country.
	GetRule(ctx context.Context, storeID, countryCode string) (*domain.ShippingRule, error)

	// ListRules returns all shipping rules of a store ordered by country code.
	ListRules(ctx context.Context, storeID string) ([]domain.ShippingRule, error)
}

// LocationRepository defines persistence operations for user shipping locations.
type LocationRepository interface {
	// Get retrieves the stored location of a user.
	Get(ctx context.Context, userID string) (*domain.UserLocation, error)

	// Upsert inserts or replaces the stored location of a user.
	Upsert(ctx context.Context, loc *domain.UserLocation) error

	// Delete removes the stored location of a user. Deleting an absent
	// location is a no-op.
	Delete(ctx context.Context, userID string) error
}

// SharedWishlistRepository defines persistence operations for share links.
type SharedWishlistRepository interface {
	// Create inserts a new share link for a wishlist.
	Create(ctx context.Context, s *domain.SharedWishlist) error

	// GetBySlug retrieves a share link by its public slug.
	GetBySlug(ctx context.Context, slug string) (*domain.SharedWishlist, error)

	// GetByWishlistID retrieves the share link of a wishlist.
	GetByWishlistID(ctx context.Context, wishlistID string) (*domain.SharedWishlist, error)

	// UpdateSettings updates the visibility and reservation settings of a
	// share link.
	UpdateSettings(ctx context.Context, s *domain.SharedWishlist) error
}

// ReservationRepository defines persistence operations for guest reservations.
type ReservationRepository interface {
	// Create inserts a new active reservation. At most one active reservation
	// may exist per item.
	Create(ctx context.Context, r *domain.Reservation) error

	// Release marks the active reservation of an item as released. Releasing
	// an item with no active reservation is a no-op.
	Release(ctx context.Context, sharedWishlistID, itemID string) error

	// ListActive returns all active reservations of a shared wishlist.
	ListActive(ctx context.Context, sharedWishlistID string) ([]domain.Reservation, error)

	// ListForOwner returns the active reservations for the items of a
	// wishlist, including item titles.
	ListForOwner(ctx context.Context, wishlistID string) ([]domain.OwnerReservation, error)
}
