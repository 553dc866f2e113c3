// Package strutil holds small string helpers shared by the ai packages.
package strutil

// Truncate shortens s to at most maxLen runes, appending "..." when
// anything was cut. Truncating by runes rather than bytes keeps
// multi-byte input (queries and model replies are often not ASCII) from
// being split mid-character. A maxLen <= 0 yields the empty string.
func Truncate(s string, maxLen int) string {
	if s == "" || maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
