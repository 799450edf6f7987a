// Package text provides small string helpers shared across services.
package text

import "unicode/utf8"

// Truncate cuts s to at most limit bytes without splitting a UTF-8 rune.
// The cut backs up to the nearest rune boundary, so the result is always
// valid UTF-8.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
