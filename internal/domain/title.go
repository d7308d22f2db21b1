// Package domain holds the core value types shared across the workbench:
// sanitized titles, derived segments and the filename encoding that ties
// segments back to their title.
package domain

import "strings"

// unsafeTitleChars are the characters stripped from a title before it is
// used as a filesystem name and registry key.
const unsafeTitleChars = `\/:"*?<>|`

// SanitizeTitle strips filesystem-unsafe characters from a human-readable
// title. The result is the canonical key for the artifact registry, the
// on-disk filenames and cache invalidation. Two titles that sanitize to the
// same string share one artifact set.
func SanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeTitleChars, r) {
			return -1
		}
		return r
	}, title)
}

// Segment is a time-bounded sub-clip derived from an original video.
// Start and End are seconds from the beginning of the original.
type Segment struct {
	Title string  `json:"title"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Path  string  `json:"path"`
}
