package textutil

import (
	"strings"
	"unicode"
)

const maxFileTokenRunes = 40

// FileToken turns a display name such as a Jellyfin user name into a
// lowercase token safe for file names. Letters and digits of any script are
// kept; every other run of characters collapses to one underscore. The result
// is capped at 40 runes and is "unknown" when nothing usable remains.
func FileToken(value string) string {
	var b strings.Builder
	pending := false
	count := 0
	for _, r := range strings.TrimSpace(value) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			pending = true
			continue
		}
		separate := pending && count > 0
		need := 1
		if separate {
			need++
		}
		if count+need > maxFileTokenRunes {
			break
		}
		if separate {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		count += need
		pending = false
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
