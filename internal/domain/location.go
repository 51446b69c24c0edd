package domain

import "time"

// UserLocation is the user's saved delivery location used by availability
// resolution. One row per user, last write wins.
type UserLocation struct {
	UserID      string    `json:"user_id"`
	CountryCode string    `json:"country_code"`
	City        string    `json:"city,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
