// Package filter decides which fetched listings are worth notifying
// about. It is pure: no clock, no store, no network.
package filter

import (
	"strings"

	"yardwatch/internal/domain"
)

// Matches reports whether a listing satisfies the criteria.
func Matches(l domain.Listing, c domain.Criteria) bool {
	keep, _ := Reason(l, c)
	return keep
}

// Reason is Matches plus the first failing check, for cycle logs.
func Reason(l domain.Listing, c domain.Criteria) (keep bool, reason string) {
	if !yearInRange(l.Year, c.YearMin, c.YearMax) {
		return false, "year"
	}
	if !hasMake(l, c.Make) {
		return false, "make"
	}
	if !hasModel(l, c.Models) {
		return false, "model"
	}
	if !locationAllowed(l.Location, c.Locations) {
		return false, "location"
	}
	return true, ""
}

// Both bounds inclusive. Unknown year (0) fails closed.
func yearInRange(year, lo, hi int) bool {
	if year == 0 {
		return false
	}
	return year >= lo && year <= hi
}

func hasMake(l domain.Listing, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return true
	}
	// some feeds only carry the make inside the title
	text := strings.ToLower(l.Make + " " + l.Title)
	return strings.Contains(text, want)
}

func hasModel(l domain.Listing, models []string) bool {
	if len(models) == 0 {
		return true
	}
	text := strings.ToLower(l.Model + " " + l.Title)
	for _, m := range models {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Allow-list semantics: an allowed name is a substring of the listing
// location, so "Calgary" admits "Calgary, AB". Empty listing location or
// empty allow-list admits nothing.
func locationAllowed(loc string, allowed []string) bool {
	loc = strings.ToLower(strings.TrimSpace(loc))
	if loc == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.Contains(loc, a) {
			return true
		}
	}
	return false
}
