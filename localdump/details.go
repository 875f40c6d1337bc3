package localdump

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidPathChars = regexp.MustCompile(`[<>:"|?*\\/\x00-\x1f]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeTitle removes characters that are invalid in filenames and
// collapses whitespace runs, preserving as much of the title as possible.
// Never returns an empty string.
func SanitizeTitle(title string) string {
	sanitized := invalidPathChars.ReplaceAllString(title, "")
	sanitized = whitespaceRuns.ReplaceAllString(sanitized, " ")
	sanitized = strings.TrimSpace(sanitized)

	if sanitized == "" {
		return "Untitled"
	}
	return sanitized
}

// PageDir is the output directory name for one page: <id>_<sanitizedTitle>.
// Keying on the ID keeps directories unique even when titles collide.
func PageDir(id string, title string) string {
	return fmt.Sprintf("%s_%s", id, SanitizeTitle(title))
}
