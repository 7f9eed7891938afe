package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameSeparator joins list-valued fields for editing.
const NameSeparator = ", "

// JoinNames renders a name list the way the grid shows it.
func JoinNames(names []string) string {
	return strings.Join(names, NameSeparator)
}

// SplitNames parses an edited name list. Elements are trimmed and empty
// elements dropped, so "" yields an empty list.
func SplitNames(value string) []string {
	names := []string{}
	for _, part := range strings.Split(value, NameSeparator) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names = append(names, part)
	}
	return names
}

// Fold lower-cases s and strips combining marks so accented Greek and Latin
// spellings compare equal to their bare forms.
func Fold(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folder, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
