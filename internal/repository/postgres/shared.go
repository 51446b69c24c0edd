package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/pkg/database"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// SharedWishlistRepository implements repository.SharedWishlistRepository
// using PostgreSQL.
type SharedWishlistRepository struct {
	pool database.DBTX
}

// NewSharedWishlistRepository creates a new PostgreSQL-backed share link repository.
func NewSharedWishlistRepository(pool database.DBTX) *SharedWishlistRepository {
	return &SharedWishlistRepository{pool: pool}
}

const sharedColumns = `id, wishlist_id, slug, visibility, allow_reservations,
	hide_reserved_items, show_reserver_names, created_at`

// Create inserts a new share link for a wishlist.
func (r *SharedWishlistRepository) Create(ctx context.Context, s *domain.SharedWishlist) error {
	query := `
		INSERT INTO shared_wishlists (id, wishlist_id, slug, visibility, allow_reservations,
			hide_reserved_items, show_reserver_names, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.WishlistID,
		s.Slug,
		s.Visibility,
		s.AllowReservations,
		s.HideReservedItems,
		s.ShowReserverNames,
		s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("wishlist", s.WishlistID)
		}
		return fmt.Errorf("insert shared wishlist: %w", err)
	}

	return nil
}

// GetBySlug retrieves a share link by its public slug.
func (r *SharedWishlistRepository) GetBySlug(ctx context.Context, slug string) (*domain.SharedWishlist, error) {
	query := fmt.Sprintf(`SELECT %s FROM shared_wishlists WHERE slug = $1`, sharedColumns)

	s, err := scanShared(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("shared wishlist", slug)
		}
		return nil, fmt.Errorf("scan shared wishlist: %w", err)
	}

	return s, nil
}

// GetByWishlistID retrieves the share link of a wishlist.
func (r *SharedWishlistRepository) GetByWishlistID(ctx context.Context, wishlistID string) (*domain.SharedWishlist, error) {
	query := fmt.Sprintf(`SELECT %s FROM shared_wishlists WHERE wishlist_id = $1`, sharedColumns)

	s, err := scanShared(r.pool.QueryRow(ctx, query, wishlistID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan shared wishlist: %w", err)
	}

	return s, nil
}

// UpdateSettings updates the visibility and reservation settings of a share link.
func (r *SharedWishlistRepository) UpdateSettings(ctx context.Context, s *domain.SharedWishlist) error {
	query := `
		UPDATE shared_wishlists
		SET visibility = $1, allow_reservations = $2, hide_reserved_items = $3, show_reserver_names = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query,
		s.Visibility, s.AllowReservations, s.HideReservedItems, s.ShowReserverNames, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update shared wishlist settings: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("shared wishlist", s.ID)
	}

	return nil
}

func scanShared(row pgx.Row) (*domain.SharedWishlist, error) {
	var s domain.SharedWishlist
	err := row.Scan(
		&s.ID,
		&s.WishlistID,
		&s.Slug,
		&s.Visibility,
		&s.AllowReservations,
		&s.HideReservedItems,
		&s.ShowReserverNames,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
