package domain

import (
	"regexp"
	"strings"
	"time"
)

// Store is a commerce store whose fulfillment coverage can be resolved
// against a user's location.
type Store struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Domain        string    `json:"domain"`
	Type          string    `json:"type"`
	Countries     []string  `json:"countries"`
	RequiresCity  bool      `json:"requires_city"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ShippingRule is a per-country override of a store's default coverage,
// optionally scoped to city whitelists or blacklists. At most one rule exists
// per (store, country); the database enforces this.
type ShippingRule struct {
	ID              string   `json:"id"`
	StoreID         string   `json:"store_id"`
	CountryCode     string   `json:"country_code"`
	CityWhitelist   []string `json:"city_whitelist,omitempty"`
	CityBlacklist   []string `json:"city_blacklist,omitempty"`
	ShipsToCountry  bool     `json:"ships_to_country"`
	ShipsToCity     bool     `json:"ships_to_city"`
	DeliveryMethods []string `json:"delivery_methods,omitempty"`
}

// Availability reason codes.
const (
	ReasonNoCountryMatch = "NO_COUNTRY_MATCH"
	ReasonNoCityMatch    = "NO_CITY_MATCH"
	ReasonCityRequired   = "CITY_REQUIRED"
)

// ReasonMessages maps each reason code to its user-facing message.
var ReasonMessages = map[string]string{
	ReasonNoCountryMatch: "this store does not ship to your country",
	ReasonNoCityMatch:    "this store does not deliver to your city",
	ReasonCityRequired:   "this store needs your city to determine availability",
}

// Availability is the outcome of resolving a store against a user location.
type Availability struct {
	Available  bool   `json:"available"`
	ReasonCode string `json:"reason_code,omitempty"`
	Message    string `json:"message,omitempty"`
}

func unavailable(reason string) Availability {
	return Availability{Available: false, ReasonCode: reason, Message: ReasonMessages[reason]}
}

// ResolveAvailability decides whether a store can fulfill a user's location.
// rule may be nil when no shipping rule exists for (store, country); plain
// country-level support is then sufficient. A rule with ShipsToCountry=false
// overrides the store's country list.
func ResolveAvailability(store *Store, rule *ShippingRule, userCountry, userCity string) Availability {
	country := strings.ToUpper(strings.TrimSpace(userCountry))

	supported := false
	for _, c := range store.Countries {
		if strings.EqualFold(strings.TrimSpace(c), country) {
			supported = true
			break
		}
	}
	if !supported {
		return unavailable(ReasonNoCountryMatch)
	}

	city := NormalizeCity(userCity)
	if store.RequiresCity && city == "" {
		return unavailable(ReasonCityRequired)
	}

	if rule == nil {
		return Availability{Available: true}
	}

	if !rule.ShipsToCountry {
		return unavailable(ReasonNoCountryMatch)
	}

	for _, blocked := range rule.CityBlacklist {
		if NormalizeCity(blocked) == city && city != "" {
			return unavailable(ReasonNoCityMatch)
		}
	}

	if len(rule.CityWhitelist) > 0 {
		allowed := false
		for _, w := range rule.CityWhitelist {
			if NormalizeCity(w) == city && city != "" {
				allowed = true
				break
			}
		}
		if !allowed {
			return unavailable(ReasonNoCityMatch)
		}
	}

	if !rule.ShipsToCity {
		return unavailable(ReasonNoCityMatch)
	}

	return Availability{Available: true}
}

var (
	cityPunctRegexp = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	citySpaceRegexp = regexp.MustCompile(`\s+`)
)

// NormalizeCity lowercases, trims, collapses whitespace, and strips
// punctuation so city comparisons survive user formatting differences.
func NormalizeCity(city string) string {
	c := strings.ToLower(strings.TrimSpace(city))
	c = cityPunctRegexp.ReplaceAllString(c, "")
	c = citySpaceRegexp.ReplaceAllString(c, " ")
	return strings.TrimSpace(c)
}
