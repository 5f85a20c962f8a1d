package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// IdentityKey is the stable dedup key for a listing. Yard stock numbers
// win when present; otherwise the canonicalized URL is hashed so tracking
// params or price drift never mint a second identity for the same car.
func (l Listing) IdentityKey() string {
	if id := strings.TrimSpace(l.ExternalID); id != "" {
		return l.Source + ":" + id
	}
	return l.Source + ":url:" + shortHash(CanonicalURL(l.URL))
}

// CanonicalURL lowercases scheme and host, drops the fragment and common
// tracking params, and sorts the query so equivalent links compare equal.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func shortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
