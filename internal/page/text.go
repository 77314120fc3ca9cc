package page

import "unicode/utf8"

// previewLimit caps how much of a text value reaches the logs.
const previewLimit = 60

// Preview shortens s to its first 60 characters for logging.
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLimit {
		return s
	}
	return string([]rune(s)[:previewLimit]) + "..."
}

// NeedsClipboard reports whether s has a character above U+FFFF, which needs
// two UTF-16 code units and cannot be typed as a single key event.
func NeedsClipboard(s string) bool {
	for _, r := range s {
		if r > 0xFFFF {
			return true
		}
	}
	return false
}
