package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AlertSettings holds a user's notification preferences. A row is created
// lazily with defaults on first access. Quiet-hour bounds are unzoned local
// "HH:MM" wall-clock strings evaluated in the user's stored timezone.
type AlertSettings struct {
	UserID            string    `json:"user_id"`
	AlertsEnabled     bool      `json:"alerts_enabled"`
	NotifyPriceDrops  bool      `json:"notify_price_drops"`
	NotifyUnderTarget bool      `json:"notify_under_target"`
	WeeklyDigest      bool      `json:"weekly_digest"`
	QuietHoursEnabled bool      `json:"quiet_hours_enabled"`
	QuietStart        string    `json:"quiet_start"`
	QuietEnd          string    `json:"quiet_end"`
	Timezone          string    `json:"timezone"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultAlertSettings returns the settings written on first access.
func DefaultAlertSettings(userID string) *AlertSettings {
	return &AlertSettings{
		UserID:            userID,
		AlertsEnabled:     true,
		NotifyPriceDrops:  true,
		NotifyUnderTarget: true,
		WeeklyDigest:      false,
		QuietHoursEnabled: false,
		QuietStart:        "22:00",
		QuietEnd:          "07:00",
		Timezone:          "UTC",
	}
}

// InQuietHours reports whether the given instant falls inside the user's
// quiet window [QuietStart, QuietEnd). Windows that wrap past midnight
// (e.g. 22:00-07:00) are handled. The instant is converted to the user's
// timezone; an unknown timezone falls back to UTC.
func (s *AlertSettings) InQuietHours(now time.Time) bool {
	if !s.QuietHoursEnabled {
		return false
	}

	start, err := parseWallClock(s.QuietStart)
	if err != nil {
		return false
	}
	end, err := parseWallClock(s.QuietEnd)
	if err != nil {
		return false
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	minute := local.Hour()*60 + local.Minute()

	if start == end {
		// Degenerate window suppresses nothing.
		return false
	}
	if start < end {
		return minute >= start && minute < end
	}
	// Wraps past midnight.
	return minute >= start || minute < end
}

// parseWallClock converts "HH:MM" to minutes since midnight.
func parseWallClock(v string) (int, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid wall-clock time %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// TargetedItem is a wishlist item carrying an active target-price alert,
// as returned by the items-with-targets listing.
type TargetedItem struct {
	ItemID            string  `json:"item_id"`
	Title             string  `json:"title"`
	WishlistName      string  `json:"wishlist_name"`
	CurrentPriceCents *int64  `json:"current_price_cents,omitempty"`
	TargetCents       int64   `json:"target_cents"`
	Currency          *string `json:"currency,omitempty"`
}
