package slug

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Birthday Wishes 2026" → "birthday-wishes-2026"
//   - "Léa's List!" → "l-a-s-list"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))

	// Replace any non-alphanumeric characters with hyphens
	slug = slugRegexp.ReplaceAllString(slug, "-")

	// Trim leading and trailing hyphens
	slug = strings.Trim(slug, "-")

	// Collapse consecutive hyphens into single hyphens
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return slug
}

// GenerateUnique appends a random 6-hex-char suffix so slugs derived from the
// same name do not collide.
func GenerateUnique(name string) string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	suffix := hex.EncodeToString(buf)

	base := Generate(name)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
