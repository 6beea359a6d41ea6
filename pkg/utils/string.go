package utils

// Truncate cuts s to at most maxLen runes and marks the cut with "...".
// A non-positive maxLen leaves only the marker.
func Truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
