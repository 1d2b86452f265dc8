package service

import (
	"regexp"
	"strings"
)

const slugMaxLength = 50

var (
	slugInvalidPattern    = regexp.MustCompile(`[^a-zA-Z0-9 -]`)
	slugWhitespaceRuns    = regexp.MustCompile(`\s{2,}`)
	slugWhitespacePattern = regexp.MustCompile(`\s`)
	slugHyphenRuns        = regexp.MustCompile(`-{2,}`)
)

// MakeSlug normalizes arbitrary text into a URL-safe slug: strip characters
// outside [a-zA-Z0-9 -], collapse whitespace runs, hyphenate spaces, collapse
// hyphen runs, lower-case, and hard-cut at 50 characters.
//
// Uniqueness is not guaranteed here; the posts table enforces it per site
// over non-deleted rows.
func MakeSlug(value string) string {
	slug := slugInvalidPattern.ReplaceAllString(value, "")
	slug = slugWhitespaceRuns.ReplaceAllString(slug, " ")
	slug = slugWhitespacePattern.ReplaceAllString(slug, "-")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.ToLower(slug)

	if len(slug) > slugMaxLength {
		slug = slug[:slugMaxLength]
	}

	return slug
}
