// Package urlx provides URL normalization and matching helpers shared by the
// screenshot cache and the competitive ranking step.
package urlx

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Normalize lowercases only the scheme and host of a URL. Path, query and
// fragment are preserved as-is: many servers treat paths case-sensitively.
// Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Valid reports whether raw is a well-formed http or https URL with a host.
func Valid(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Domain extracts the host portion of a URL, empty on parse failure.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Host
}

// CacheKey derives a content-addressed cache key: the hex SHA-256 of the
// normalized URL.
func CacheKey(raw string) string {
	sum := sha256.Sum256([]byte(Normalize(raw)))
	return hex.EncodeToString(sum[:])
}

// Hostname returns the lowercased hostname with any leading "www." stripped,
// used for rank matching across search results.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// FindRanking locates target's 1-based position in a result set by exact
// normalized-hostname match. Returns nil when no result matches.
func FindRanking(target string, resultURLs []string) *int {
	want := Hostname(target)
	if want == "" {
		return nil
	}
	for i, r := range resultURLs {
		if Hostname(r) == want {
			rank := i + 1
			return &rank
		}
	}
	return nil
}
