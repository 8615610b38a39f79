package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"carfinder/models"
)

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)

	// query parameters that identify a listing rather than a tracking session
	keepParams = map[string]bool{
		"id":        true,
		"itemid":    true,
		"listingid": true,
	}
)

// CanonicalURL normalizes a listing URL so the same listing reached through
// different tracking links compares equal. Unparsable input is returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for key := range q {
		if !keepParams[strings.ToLower(key)] {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Fingerprint hashes the fields that identify the same car listed twice on
// one site under different URLs.
func Fingerprint(listing *models.Listing) string {
	input := fmt.Sprintf("%s|%s|%s|%s",
		strings.ToLower(listing.Source),
		NormalizeTitle(listing.Title),
		digits(listing.Price),
		digits(listing.Mileage),
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// NormalizeTitle lowercases a title and collapses punctuation and spacing.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = nonAlnumRegex.ReplaceAllString(title, " ")
	title = multiSpaceRegex.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

func digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
