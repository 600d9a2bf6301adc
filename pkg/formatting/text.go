package formatting

import (
	"fmt"
	"strings"
	"time"
)

const ellipsis = "..."

// Truncate bounds s to at most limit runes, marking the cut with an ellipsis.
// A limit below one disables truncation.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit < 1 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

// Head returns the first n runes of s without any marker.
func Head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Elapsed renders d as minutes:seconds, e.g. "2:05".
func Elapsed(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
