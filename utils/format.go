// utils/format.go - Display formatting helpers
package utils

import (
	"strings"
	"time"
)

// JoinNames joins a list for display in running text: "A", "A and B",
// "A, B and C". Blank entries are dropped.
func JoinNames(names []string) string {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}

	switch len(cleaned) {
	case 0:
		return ""
	case 1:
		return cleaned[0]
	case 2:
		return cleaned[0] + " and " + cleaned[1]
	default:
		return strings.Join(cleaned[:len(cleaned)-1], ", ") + " and " + cleaned[len(cleaned)-1]
	}
}

// FormatDate renders a due date the way it appears in notification
// subjects and bodies, e.g. "Jan 2, 2026".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
