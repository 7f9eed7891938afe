package lexicon

import (
	"fmt"
	"strings"
)

// Code pairs an enumerated value with its display name.
type Code struct {
	Value string
	Label string
}

// EntryType classifies an entry. A nil *EntryType means "no type".
type EntryType string

const (
	TypeTerm         EntryType = "term"
	TypePersonalName EntryType = "personal_name"
	TypePlaceName    EntryType = "place_name"
	TypeArtworkTitle EntryType = "artwork_title"
	TypeConcept      EntryType = "concept"
)

var languageCodes = []Code{
	{Value: "ag", Label: "Ancient Greek"},
	{Value: "lat", Label: "Latin"},
	{Value: "en", Label: "English"},
	{Value: "de", Label: "German"},
	{Value: "fr", Label: "French"},
	{Value: "tu", Label: "Turkish"},
	{Value: "gr", Label: "Greek"},
}

var entryTypes = []Code{
	{Value: string(TypePersonalName), Label: "Personal Name"},
	{Value: string(TypePlaceName), Label: "Place Name"},
	{Value: string(TypeTerm), Label: "Term"},
	{Value: string(TypeConcept), Label: "Concept"},
	{Value: string(TypeArtworkTitle), Label: "Artwork Title"},
}

// LanguageCodes returns the supported language codes in display order.
func LanguageCodes() []Code {
	return append([]Code(nil), languageCodes...)
}

// EntryTypes returns the supported entry types in display order. The "no
// type" choice is not part of the table; it is the empty string.
func EntryTypes() []Code {
	return append([]Code(nil), entryTypes...)
}

// ValidLanguage reports whether code is a supported language code.
func ValidLanguage(code string) bool {
	return hasCode(languageCodes, code)
}

// LanguageLabel returns the display name for code, or code itself.
func LanguageLabel(code string) string {
	return label(languageCodes, code)
}

// TypeLabel returns the display name for an entry type code, or the code.
func TypeLabel(code string) string {
	return label(entryTypes, code)
}

// ParseEntryType converts a picker value into an entry type. The empty
// string is the "no type" sentinel and yields nil.
func ParseEntryType(value string) (*EntryType, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if !hasCode(entryTypes, value) {
		return nil, fmt.Errorf("lexicon: unknown entry type %q", value)
	}
	t := EntryType(value)
	return &t, nil
}

func hasCode(codes []Code, value string) bool {
	for _, c := range codes {
		if c.Value == value {
			return true
		}
	}
	return false
}

func label(codes []Code, value string) string {
	for _, c := range codes {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
