package duplicates

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	trailingYear   = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	editionMarkers = regexp.MustCompile(`\b(director's cut|extended|unrated|remastered|4k|1080p|720p|bluray|dvd)\b`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	disallowed     = regexp.MustCompile(`[^\w\s\x{4E00}-\x{9FFF}]`)

	lower = cases.Lower(language.Und)
)

// NormalizeTitle reduces a movie name to its grouping key: lowercased, with a
// trailing "(YYYY)" year, edition markers, and punctuation removed. CJK
// ideographs are kept.
func NormalizeTitle(name string) string {
	key := strings.TrimSpace(lower.String(name))
	key = trailingYear.ReplaceAllString(key, "")
	key = editionMarkers.ReplaceAllString(key, " ")
	key = whitespaceRun.ReplaceAllString(key, " ")
	key = disallowed.ReplaceAllString(key, "")
	return strings.TrimSpace(key)
}
