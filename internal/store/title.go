package store

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLength bounds stored titles, in runes.
const MaxTitleLength = 200

// NormalizeTitle sanitizes and truncates a document title for storage.
func NormalizeTitle(title string) string {
	return TruncateTitle(SanitizeTitle(title), MaxTitleLength)
}

// TruncateTitle ensures title is at most maxLen runes.
// If truncation is needed, appends "..." to indicate truncation.
func TruncateTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)

	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	runes := []rune(title)
	return string(runes[:maxLen-3]) + "..."
}

// SanitizeTitle removes control characters and collapses whitespace.
// This keeps titles on a single line in logs, list views and terminals.
func SanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)

	return strings.Join(strings.Fields(title), " ")
}
