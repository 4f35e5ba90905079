package validators

import "strings"

// SanitizeString trims surrounding whitespace from a raw query value and caps
// its length. A maxLen of zero or less leaves the length unbounded.
func SanitizeString(raw string, maxLen int) string {
	value := strings.TrimSpace(raw)
	if maxLen > 0 && len(value) > maxLen {
		value = value[:maxLen]
	}
	return value
}
