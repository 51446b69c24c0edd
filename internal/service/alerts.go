package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/notifier"
	"github.com/ckcelina/my-wishlist-sub005/internal/repository"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// AlertService implements the notification policy: per-user preferences,
// quiet hours and target-price gating.
type AlertService struct {
	settings repository.SettingsRepository
	items    repository.ItemRepository
	notifier notifier.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewAlertService creates a new alert policy service.
func NewAlertService(
	settings repository.SettingsRepository,
	items repository.ItemRepository,
	n notifier.Notifier,
	logger *slog.Logger,
) *AlertService {
	return &AlertService{
		settings: settings,
		items:    items,
		notifier: n,
		logger:   logger,
		now:      time.Now,
	}
}

// GetSettings returns the user's alert settings, creating defaults on first access.
func (s *AlertService) GetSettings(ctx context.Context, userID string) (*domain.AlertSettings, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	settings, err := s.settings.Get(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get alert settings: %w", err)
	}

	defaults := domain.DefaultAlertSettings(userID)
	if err := s.settings.Upsert(ctx, defaults); err != nil {
		return nil, fmt.Errorf("create default alert settings: %w", err)
	}

	s.logger.InfoContext(ctx, "created default alert settings", slog.String("user_id", userID))

	return defaults, nil
}

// UpdateSettingsInput holds a partial alert settings update. Nil fields keep
// their current value.
type UpdateSettingsInput struct {
	AlertsEnabled     *bool   `json:"alerts_enabled"`
	NotifyPriceDrops  *bool   `json:"notify_price_drops"`
	NotifyUnderTarget *bool   `json:"notify_under_target"`
	WeeklyDigest      *bool   `json:"weekly_digest"`
	QuietHoursEnabled *bool   `json:"quiet_hours_enabled"`
	QuietStart        *string `json:"quiet_start" validate:"omitempty,datetime=15:04"`
	QuietEnd          *string `json:"quiet_end" validate:"omitempty,datetime=15:04"`
	Timezone          *string `json:"timezone" validate:"omitempty,timezone"`
}

// UpdateSettings merges the given fields into the user's settings and persists them.
func (s *AlertService) UpdateSettings(ctx context.Context, userID string, input *UpdateSettingsInput) (*domain.AlertSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.AlertsEnabled != nil {
		settings.AlertsEnabled = *input.AlertsEnabled
	}
	if input.NotifyPriceDrops != nil {
		settings.NotifyPriceDrops = *input.NotifyPriceDrops
	}
	if input.NotifyUnderTarget != nil {
		settings.NotifyUnderTarget = *input.NotifyUnderTarget
	}
	if input.WeeklyDigest != nil {
		settings.WeeklyDigest = *input.WeeklyDigest
	}
	if input.QuietHoursEnabled != nil {
		settings.QuietHoursEnabled = *input.QuietHoursEnabled
	}
	if input.QuietStart != nil {
		settings.QuietStart = *input.QuietStart
	}
	if input.QuietEnd != nil {
		settings.QuietEnd = *input.QuietEnd
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown timezone %q", *input.Timezone))
		}
		settings.Timezone = *input.Timezone
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("update alert settings: %w", err)
	}

	return settings, nil
}

// ItemsWithTargets returns the user's items that carry a target-price alert.
func (s *AlertService) ItemsWithTargets(ctx context.Context, userID string) ([]domain.TargetedItem, error) {
	items, err := s.items.ListWithTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items with targets: %w", err)
	}
	return items, nil
}

// NotifyDrop delivers a price-drop notification unless the user's settings
// suppress it. It reports whether the notification was sent.
func (s *AlertService) NotifyDrop(ctx context.Context, userID string, drop *domain.DropEvent) (bool, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return false, err
	}

	if !settings.AlertsEnabled || !settings.NotifyPriceDrops {
		notificationsTotal.WithLabelValues("price_drop", notifSuppressed).Inc()
		return false, nil
	}
	if settings.InQuietHours(s.now()) {
		s.logger.DebugContext(ctx, "suppressing price drop alert during quiet hours",
			slog.String("user_id", userID),
			slog.String("item_id", drop.ItemID),
		)
		notificationsTotal.WithLabelValues("price_drop", notifSuppressed).Inc()
		return false, nil
	}

	if err := s.notifier.NotifyPriceDrop(ctx, userID, drop); err != nil {
		return false, fmt.Errorf("notify price drop: %w", err)
	}

	notificationsTotal.WithLabelValues("price_drop", notifSent).Inc()
	return true, nil
}

// NotifyUnderTarget delivers an under-target notification unless the user's
// settings suppress it. It reports whether the notification was sent.
func (s *AlertService) NotifyUnderTarget(ctx context.Context, userID string, info *notifier.UnderTargetInfo) (bool, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return false, err
	}

	if !settings.AlertsEnabled || !settings.NotifyUnderTarget {
		notificationsTotal.WithLabelValues("under_target", notifSuppressed).Inc()
		return false, nil
	}
	if settings.InQuietHours(s.now()) {
		s.logger.DebugContext(ctx, "suppressing under-target alert during quiet hours",
			slog.String("user_id", userID),
			slog.String("item_id", info.ItemID),
		)
		notificationsTotal.WithLabelValues("under_target", notifSuppressed).Inc()
		return false, nil
	}

	if err := s.notifier.NotifyUnderTarget(ctx, userID, info); err != nil {
		return false, fmt.Errorf("notify under target: %w", err)
	}

	notificationsTotal.WithLabelValues("under_target", notifSent).Inc()
	return true, nil
}
