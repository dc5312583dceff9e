// Package slug turns titles into URL-safe article identifiers.
package slug

import (
	"regexp"
	"strings"
)

var (
	nonWord = regexp.MustCompile(`[^\w-]+`)
	hyphens = regexp.MustCompile(`-{2,}`)
)

// Derive builds the default slug for a title.
func Derive(title string) string {
	return Normalize(title)
}

// Normalize lower-cases raw, joins whitespace runs with a hyphen, drops everything
// outside [A-Za-z0-9_-], collapses repeated hyphens and trims them from both ends.
// The result may be empty.
func Normalize(raw string) string {
	s := strings.Join(strings.Fields(strings.ToLower(raw)), "-")
	s = nonWord.ReplaceAllString(s, "")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is a non-empty, already normalized slug.
func Valid(s string) bool {
	return s != "" && Normalize(s) == s
}
