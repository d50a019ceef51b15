package utils

import "github.com/charmbracelet/x/ansi"

// Truncate cuts s to maxLen terminal cells and appends "...". Multi-byte
// characters are never split.
func Truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "") + "..."
}
