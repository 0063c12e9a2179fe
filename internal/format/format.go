// Package format provides utilities for formatting and manipulating strings
// for terminal output.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Unicodes.
const (
	BulletPoint    = "•" /* • */
	MidBulletPoint = "·" /* · */
	Ellipsis       = "…" /* … */
)

// PaddedLine formats a label and value into a left-aligned line with fixed
// padding.
func PaddedLine(s, v any) string {
	const pad = 15
	return fmt.Sprintf("%-*s %v", pad, s, v)
}

// NormalizeSpace removes extra whitespace from a string, leaving only single
// spaces between words.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Shorten truncates s to at most n runes, ending with an ellipsis when cut.
func Shorten(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)

	return string(r[:n-1]) + Ellipsis
}

// Oneline collapses whitespace, including newlines, and shortens to n runes.
func Oneline(s string, n int) string {
	return Shorten(NormalizeSpace(s), n)
}

// OrDefault returns def for a nil or blank string.
func OrDefault(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}

	return *s
}
