package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LocationFromCard pulls a per-vehicle location off an inventory card.
// Most yards only state the location at page level, so empty is the
// common answer and the caller falls back to its configured one.
func LocationFromCard(sel *goquery.Selection) string {
	candidates := []string{
		".location",
		".yard-location",
		"[data-testid='location']",
	}
	for _, q := range candidates {
		if t := CleanText(sel.Find(q).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}
	return ""
}

// ExtractLocationFromLabeledText finds "Location: X" style labels in
// plain text such as mail alert bodies.
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"location:",
		"yard location:",
		"yard:",
	}

	for _, lab := range labels {
		i := strings.Index(low, lab)
		if i < 0 {
			continue
		}
		rest := strings.TrimSpace(s[i+len(lab):])

		for _, cut := range []string{"\n", "\r", " | ", " - "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}

		rest = CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}
