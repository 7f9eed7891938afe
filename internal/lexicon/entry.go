// Package lexicon holds the records served by the lexicon API: entries, their
// translations, comments and votes, plus the static code tables the grid uses
// to validate and render enumerated fields.
package lexicon

import "time"

// Entry is a headword in the lexicon. Entries carry their translations when
// the API is asked to include them.
type Entry struct {
	ID                 string         `json:"id"`
	PrimaryName        string         `json:"primary_name"`
	OriginalScript     string         `json:"original_script,omitempty"`
	LanguageCode       string         `json:"language_code"`
	EntryType          *EntryType     `json:"entry_type"`
	AlternativeNames   []string       `json:"alternative_names,omitempty"`
	OtherLanguageCodes []string       `json:"other_language_codes,omitempty"`
	Etymology          string         `json:"etymology,omitempty"`
	Definition         string         `json:"definition,omitempty"`
	HistoricalContext  string         `json:"historical_context,omitempty"`
	IsVerified         bool           `json:"is_verified"`
	VerificationNotes  string         `json:"verification_notes,omitempty"`
	CreatedBy          string         `json:"created_by,omitempty"`
	UpdatedBy          string         `json:"updated_by,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Translations       []*Translation `json:"translations,omitempty"`
}

// Translation renders an entry in another language.
type Translation struct {
	ID             string    `json:"id"`
	EntryID        string    `json:"entry_id"`
	LanguageCode   string    `json:"language_code"`
	TranslatedName string    `json:"translated_name"`
	Notes          string    `json:"notes,omitempty"`
	IsPreferred    bool      `json:"is_preferred"`
	Upvotes        int       `json:"upvotes"`
	Downvotes      int       `json:"downvotes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Comment is a discussion note attached to an entry.
type Comment struct {
	ID              string    `json:"id"`
	EntryID         string    `json:"entry_id,omitempty"`
	ParentCommentID string    `json:"parent_comment_id,omitempty"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// VoteType is the direction of a translation vote.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Vote is the caller's vote on a translation.
type Vote struct {
	ID            string    `json:"id"`
	TranslationID string    `json:"translation_id"`
	UserID        string    `json:"user_id"`
	VoteType      VoteType  `json:"vote_type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Metadata is the dashboard summary served by the entries endpoint.
type Metadata struct {
	TotalEntries         int      `json:"total_entries"`
	NewestUpdatedEntries []*Entry `json:"newest_updated_entries"`
	NewestTranslated     []*Entry `json:"entries_with_newest_translations"`
}

// FirstTranslation returns the translation shown in the grid, or nil.
func (e *Entry) FirstTranslation() *Translation {
	if e == nil || len(e.Translations) == 0 {
		return nil
	}
	return e.Translations[0]
}

// Clone returns a shallow copy of the entry. Slices are shared with the
// original; callers replacing a slice element must copy the slice first.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// TypeCode returns the entry type code or "" when the entry has no type.
func (e *Entry) TypeCode() string {
	if e == nil || e.EntryType == nil {
		return ""
	}
	return string(*e.EntryType)
}
