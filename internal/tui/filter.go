package tui

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kingrea/lexicon/internal/lexicon"
)

// entrySource exposes folded row text to fuzzy matching so "zeus" finds
// "Ζεύς" transliterations and accented names alike.
type entrySource []*lexicon.Entry

func (s entrySource) String(i int) string {
	e := s[i]
	parts := []string{e.PrimaryName, e.OriginalScript}
	parts = append(parts, e.AlternativeNames...)
	if tr := e.FirstTranslation(); tr != nil {
		parts = append(parts, tr.TranslatedName)
	}
	return lexicon.Fold(strings.Join(parts, " "))
}

func (s entrySource) Len() int { return len(s) }

// filterEntries returns the entries matching pattern in page order, so an
// edit that changes a row's score does not move it.
func filterEntries(entries []*lexicon.Entry, pattern string) []*lexicon.Entry {
	pattern = lexicon.Fold(pattern)
	if pattern == "" {
		return entries
	}
	matches := fuzzy.FindFrom(pattern, entrySource(entries))
	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	out := make([]*lexicon.Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}
