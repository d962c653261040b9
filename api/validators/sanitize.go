package validators

import (
	"strings"
	"unicode/utf8"
)

// MaxQueryLen bounds free-text search input, in characters.
const MaxQueryLen = 200

// SanitizeString trims input and caps it at maxLen runes so multi-byte text
// is never cut mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	return string([]rune(trimmed)[:maxLen])
}
