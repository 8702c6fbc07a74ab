// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
	// Matches runs of whitespace.
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeSlug converts user input to a canonical guide slug.
//
// Normalization rules:
//  1. Decompose accented characters and drop what is left outside ASCII
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores and slashes with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes and trim leading/trailing dashes
//
// Examples:
//
//	"Install Window Handle" → "install-window-handle"
//	"Montáž kliky"          → "montaz-kliky"
//	"--door_frame--"        → "door-frame"
func NormalizeSlug(input string) string {
	s := norm.NFKD.String(input)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsNormalizedSlug reports whether s is already in canonical slug form.
func IsNormalizedSlug(s string) bool {
	return s != "" && NormalizeSlug(s) == s
}

// CleanTagName trims a tag name and collapses inner whitespace.
// The result is what gets stored and displayed.
func CleanTagName(name string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(norm.NFC.String(name)), " ")
}

// TagNameKey returns the identity key for a tag name.
// Tag names form one global namespace, so "Okno", "okno" and " OKNO "
// all resolve to the same tag. Diacritics are significant.
func TagNameKey(name string) string {
	return cases.Fold().String(CleanTagName(name))
}

// FoldText strips diacritics so "Montáž" and "montaz" compare equal.
// Case is preserved; search analyzers lowercase on their own.
func FoldText(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
