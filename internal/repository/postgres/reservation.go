package postgres

import (
	"context"
	"fmt"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/pkg/database"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// ReservationRepository implements repository.ReservationRepository using
// PostgreSQL. A partial unique index on (item_id) WHERE status = 'reserved'
// guarantees at most one active reservation per item.
type ReservationRepository struct {
	pool database.DBTX
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool database.DBTX) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Create inserts a new active reservation. Returns a conflict error when the
// item already has an active reservation.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `
		INSERT INTO reservations (id, shared_wishlist_id, item_id, reserved_by_name, status, reserved_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		res.ID,
		res.SharedWishlistID,
		res.ItemID,
		res.ReservedByName,
		res.Status,
		res.ReservedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("item is already reserved")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("item", res.ItemID)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

// Release marks the active reservation of an item as released. Releasing an
// item with no active reservation succeeds without effect.
func (r *ReservationRepository) Release(ctx context.Context, sharedWishlistID, itemID string) error {
	query := `
		UPDATE reservations
		SET status = $1
		WHERE shared_wishlist_id = $2 AND item_id = $3 AND status = $4`

	_, err := r.pool.Exec(ctx, query,
		domain.ReservationStatusReleased, sharedWishlistID, itemID, domain.ReservationStatusReserved,
	)
	if err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}

	return nil
}

// ListActive returns all active reservations of a shared wishlist.
func (r *ReservationRepository) ListActive(ctx context.Context, sharedWishlistID string) ([]domain.Reservation, error) {
	query := `
		SELECT id, shared_wishlist_id, item_id, reserved_by_name, status, reserved_at
		FROM reservations
		WHERE shared_wishlist_id = $1 AND status = $2
		ORDER BY reserved_at`

	rows, err := r.pool.Query(ctx, query, sharedWishlistID, domain.ReservationStatusReserved)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID, &res.SharedWishlistID, &res.ItemID, &res.ReservedByName, &res.Status, &res.ReservedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}

	return reservations, nil
}

// ListForOwner returns the active reservations for the items of a wishlist,
// including item titles, newest first. Released reservations are not reported.
func (r *ReservationRepository) ListForOwner(ctx context.Context, wishlistID string) ([]domain.OwnerReservation, error) {
	query := `
		SELECT res.id, res.shared_wishlist_id, res.item_id, res.reserved_by_name,
			   res.status, res.reserved_at, i.title
		FROM reservations res
		JOIN wishlist_items i ON i.id = res.item_id
		WHERE i.wishlist_id = $1 AND res.status = $2
		ORDER BY res.reserved_at DESC`

	rows, err := r.pool.Query(ctx, query, wishlistID, domain.ReservationStatusReserved)
	if err != nil {
		return nil, fmt.Errorf("list owner reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]domain.OwnerReservation, 0)
	for rows.Next() {
		var res domain.OwnerReservation
		if err := rows.Scan(
			&res.ID, &res.SharedWishlistID, &res.ItemID, &res.ReservedByName,
			&res.Status, &res.ReservedAt, &res.ItemTitle,
		); err != nil {
			return nil, fmt.Errorf("scan owner reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner reservation rows: %w", err)
	}

	return reservations, nil
}
