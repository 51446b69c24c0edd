package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/pkg/database"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// ItemRepository implements repository.ItemRepository using PostgreSQL.
type ItemRepository struct {
	pool database.DBTX
}

// NewItemRepository creates a new PostgreSQL-backed wishlist item repository.
func NewItemRepository(pool database.DBTX) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemColumns = `id, wishlist_id, title, source_url, current_price_cents, currency,
	last_checked_at, alert_enabled, alert_target_cents, last_target_alert_cents, created_at`

// GetWishlist retrieves a wishlist by its ID.
func (r *ItemRepository) GetWishlist(ctx context.Context, id string) (*domain.Wishlist, error) {
	query := `
		SELECT id, owner_id, name, created_at
		FROM wishlists
		WHERE id = $1`

	var w domain.Wishlist
	err := r.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.OwnerID, &w.Name, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("wishlist", id)
		}
		return nil, fmt.Errorf("scan wishlist: %w", err)
	}

	return &w, nil
}

// GetItem retrieves a wishlist item by its ID.
func (r *ItemRepository) GetItem(ctx context.Context, id string) (*domain.WishlistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM wishlist_items WHERE id = $1`, itemColumns)

	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("item", id)
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	return item, nil
}

// ListByWishlist returns all items of a wishlist, newest first.
func (r *ItemRepository) ListByWishlist(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY created_at DESC`, itemColumns)

	return r.queryItems(ctx, query, wishlistID)
}

// ListTrackable returns items of a wishlist that carry a source URL.
func (r *ItemRepository) ListTrackable(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM wishlist_items
		WHERE wishlist_id = $1 AND source_url IS NOT NULL AND source_url <> ''
		ORDER BY created_at`, itemColumns)

	return r.queryItems(ctx, query, wishlistID)
}

// UpdatePrice sets an item's current price, currency and last-checked timestamp.
func (r *ItemRepository) UpdatePrice(ctx context.Context, itemID string, priceCents int64, currency string, checkedAt time.Time) error {
	query := `
		UPDATE wishlist_items
		SET current_price_cents = $1, currency = $2, last_checked_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, priceCents, currency, checkedAt, itemID)
	if err != nil {
		return fmt.Errorf("update item price: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("item", itemID)
	}

	return nil
}

// TouchChecked updates only an item's last-checked timestamp.
func (r *ItemRepository) TouchChecked(ctx context.Context, itemID string, checkedAt time.Time) error {
	query := `UPDATE wishlist_items SET last_checked_at = $1 WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, checkedAt, itemID)
	if err != nil {
		return fmt.Errorf("touch item checked: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("item", itemID)
	}

	return nil
}

// SetLastTargetAlert records or clears the price at which the most recent
// under-target alert fired.
func (r *ItemRepository) SetLastTargetAlert(ctx context.Context, itemID string, priceCents *int64) error {
	query := `UPDATE wishlist_items SET last_target_alert_cents = $1 WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, priceCents, itemID)
	if err != nil {
		return fmt.Errorf("set last target alert: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("item", itemID)
	}

	return nil
}

// ListWithTargets returns all of a user's items that have a target price,
// sorted by title case-insensitively.
func (r *ItemRepository) ListWithTargets(ctx context.Context, userID string) ([]domain.TargetedItem, error) {
	query := `
		SELECT i.id, i.title, w.name, i.current_price_cents, i.alert_target_cents, i.currency
		FROM wishlist_items i
		JOIN wishlists w ON w.id = i.wishlist_id
		WHERE w.owner_id = $1 AND i.alert_enabled AND i.alert_target_cents IS NOT NULL
		ORDER BY LOWER(i.title), i.id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list targeted items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.TargetedItem, 0)
	for rows.Next() {
		var t domain.TargetedItem
		if err := rows.Scan(
			&t.ItemID,
			&t.Title,
			&t.WishlistName,
			&t.CurrentPriceCents,
			&t.TargetCents,
			&t.Currency,
		); err != nil {
			return nil, fmt.Errorf("scan targeted item: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targeted item rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.WishlistItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}

	return items, nil
}

func scanItem(row pgx.Row) (*domain.WishlistItem, error) {
	var i domain.WishlistItem
	err := row.Scan(
		&i.ID,
		&i.WishlistID,
		&i.Title,
		&i.SourceURL,
		&i.CurrentPriceCents,
		&i.Currency,
		&i.LastCheckedAt,
		&i.AlertEnabled,
		&i.AlertTargetCents,
		&i.LastTargetAlertCents,
		&i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
