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

// SettingsRepository implements repository.SettingsRepository using PostgreSQL.
type SettingsRepository struct {
	pool database.DBTX
}

// NewSettingsRepository creates a new PostgreSQL-backed alert settings repository.
func NewSettingsRepository(pool database.DBTX) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get retrieves the alert settings for a user.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*domain.AlertSettings, error) {
	query := `
		SELECT user_id, alerts_enabled, notify_price_drops, notify_under_target,
			   weekly_digest, quiet_hours_enabled, quiet_start, quiet_end, timezone, updated_at
		FROM alert_settings
		WHERE user_id = $1`

	var s domain.AlertSettings
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.AlertsEnabled,
		&s.NotifyPriceDrops,
		&s.NotifyUnderTarget,
		&s.WeeklyDigest,
		&s.QuietHoursEnabled,
		&s.QuietStart,
		&s.QuietEnd,
		&s.Timezone,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan alert settings: %w", err)
	}

	return &s, nil
}

// Upsert inserts or fully replaces the alert settings for a user.
func (r *SettingsRepository) Upsert(ctx context.Context, s *domain.AlertSettings) error {
	query := `
		INSERT INTO alert_settings (user_id, alerts_enabled, notify_price_drops, notify_under_target,
			weekly_digest, quiet_hours_enabled, quiet_start, quiet_end, timezone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			alerts_enabled = EXCLUDED.alerts_enabled,
			notify_price_drops = EXCLUDED.notify_price_drops,
			notify_under_target = EXCLUDED.notify_under_target,
			weekly_digest = EXCLUDED.weekly_digest,
			quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
			quiet_start = EXCLUDED.quiet_start,
			quiet_end = EXCLUDED.quiet_end,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		s.UserID,
		s.AlertsEnabled,
		s.NotifyPriceDrops,
		s.NotifyUnderTarget,
		s.WeeklyDigest,
		s.QuietHoursEnabled,
		s.QuietStart,
		s.QuietEnd,
		s.Timezone,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert alert settings: %w", err)
	}

	return nil
}
