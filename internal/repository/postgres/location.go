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

// LocationRepository implements repository.LocationRepository using PostgreSQL.
type LocationRepository struct {
	pool database.DBTX
}

// NewLocationRepository creates a new PostgreSQL-backed user location repository.
func NewLocationRepository(pool database.DBTX) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// Get retrieves the stored location of a user.
func (r *LocationRepository) Get(ctx context.Context, userID string) (*domain.UserLocation, error) {
	query := `
		SELECT user_id, country_code, city, updated_at
		FROM user_locations
		WHERE user_id = $1`

	var loc domain.UserLocation
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&loc.UserID, &loc.CountryCode, &loc.City, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("location", userID)
		}
		return nil, fmt.Errorf("scan user location: %w", err)
	}

	return &loc, nil
}

// Upsert inserts or replaces the stored location of a user.
func (r *LocationRepository) Upsert(ctx context.Context, loc *domain.UserLocation) error {
	query := `
		INSERT INTO user_locations (user_id, country_code, city, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			country_code = EXCLUDED.country_code,
			city = EXCLUDED.city,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query, loc.UserID, loc.CountryCode, loc.City, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert user location: %w", err)
	}

	return nil
}

// Delete removes the stored location of a user.
func (r *LocationRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_locations WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user location: %w", err)
	}

	return nil
}
