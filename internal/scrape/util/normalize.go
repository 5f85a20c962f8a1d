package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeLocation tidies a scraped location string: label prefixes go,
// whitespace collapses, duplicate comma parts collapse.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATION:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// ParseYear pulls the first plausible model year (19xx or 20xx) out of
// free text. Returns 0 when none is found.
func ParseYear(s string) int {
	for i := 0; i+4 <= len(s); i++ {
		if !twoDigitPrefix(s[i:]) {
			continue
		}
		if isDigit(s[i+2]) && isDigit(s[i+3]) {
			// reject longer digit runs like part numbers
			if i > 0 && isDigit(s[i-1]) {
				continue
			}
			if i+4 < len(s) && isDigit(s[i+4]) {
				continue
			}
			y := int(s[i]-'0')*1000 + int(s[i+1]-'0')*100 + int(s[i+2]-'0')*10 + int(s[i+3]-'0')
			return y
		}
	}
	return 0
}

// ParseTitle splits a listing title like "2001 Dodge Ram 1500" into its
// year, make and model parts. Any of the three may come back zero-valued.
func ParseTitle(title string) (year int, mk, model string) {
	fields := strings.Fields(CleanText(title))
	if len(fields) == 0 {
		return 0, "", ""
	}

	i := 0
	if y := ParseYear(fields[0]); y != 0 && len(fields[0]) == 4 {
		year = y
		i = 1
	}
	if i < len(fields) {
		mk = fields[i]
		i++
	}
	if i < len(fields) {
		model = strings.Join(fields[i:], " ")
	}
	return year, mk, model
}

func twoDigitPrefix(s string) bool {
	return len(s) >= 2 && (s[0] == '1' && s[1] == '9' || s[0] == '2' && s[1] == '0')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
