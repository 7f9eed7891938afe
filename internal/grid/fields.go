package grid

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kingrea/lexicon/internal/lexicon"
)

// Scope says which record a field lives on.
type Scope int

const (
	// ScopeEntry fields are properties of the entry itself.
	ScopeEntry Scope = iota
	// ScopeTranslation fields are properties of the entry's first translation.
	ScopeTranslation
)

func (s Scope) String() string {
	if s == ScopeTranslation {
		return "translation"
	}
	return "entry"
}

// Control is the kind of editor a field needs.
type Control int

const (
	ControlReadOnly Control = iota
	ControlText
	ControlChoice
	ControlList
)

func (c Control) String() string {
	switch c {
	case ControlText:
		return "text"
	case ControlChoice:
		return "choice"
	case ControlList:
		return "list"
	default:
		return "read-only"
	}
}

// Field describes one grid column: where its value lives, how it is edited
// and how an edited string becomes the persisted value.
type Field struct {
	Name     string
	Label    string
	Wire     string
	Scope    Scope
	Control  Control
	Sortable bool
	// AllowEmpty marks choice fields whose "" choice means "unset".
	AllowEmpty bool

	choices func() []lexicon.Code
	get     func(*lexicon.Entry) string
	// Entry-scope accessors.
	setEntry  func(dst *lexicon.Entry, value string) error
	copyEntry func(dst, src *lexicon.Entry)
	// Translation-scope accessors.
	setTranslation  func(dst *lexicon.Translation, value string)
	copyTranslation func(dst, src *lexicon.Translation)
	payload         func(value string) (any, error)
}

// Editable reports whether the field accepts edits.
func (f Field) Editable() bool {
	return f.Control != ControlReadOnly
}

// Choices lists the allowed values of a choice field.
func (f Field) Choices() []lexicon.Code {
	if f.choices == nil {
		return nil
	}
	return f.choices()
}

// Value renders the field of e as the grid shows it and as an edit is seeded.
func (f Field) Value(e *lexicon.Entry) string {
	if e == nil || f.get == nil {
		return ""
	}
	return f.get(e)
}

// Payload converts an edited string into the value sent to the API.
func (f Field) Payload(value string) (any, error) {
	if f.payload == nil {
		return value, nil
	}
	return f.payload(value)
}

// apply returns a copy of e with the field set to value. Translation fields
// are written to the translation with id subID; the translations slice and
// that translation are copied, everything else is shared.
func (f Field) apply(e *lexicon.Entry, subID, value string) (*lexicon.Entry, error) {
	switch f.Scope {
	case ScopeEntry:
		if f.setEntry == nil {
			return nil, fmt.Errorf("grid: field %s is read-only", f.Name)
		}
		cp := e.Clone()
		if err := f.setEntry(cp, value); err != nil {
			return nil, err
		}
		return cp, nil
	case ScopeTranslation:
		if f.setTranslation == nil {
			return nil, fmt.Errorf("grid: field %s is read-only", f.Name)
		}
		return withTranslation(e, subID, func(t *lexicon.Translation) {
			f.setTranslation(t, value)
		})
	}
	return nil, fmt.Errorf("grid: field %s has no scope", f.Name)
}

// carry returns a copy of dst whose field holds the value it has in src.
func (f Field) carry(dst, src *lexicon.Entry, subID string) (*lexicon.Entry, error) {
	switch f.Scope {
	case ScopeEntry:
		cp := dst.Clone()
		f.copyEntry(cp, src)
		return cp, nil
	case ScopeTranslation:
		from := findTranslation(src, subID)
		if from == nil {
			return nil, fmt.Errorf("grid: translation %s missing from source", subID)
		}
		return f.carryTranslation(dst, from, subID)
	}
	return nil, fmt.Errorf("grid: field %s has no scope", f.Name)
}

func (f Field) carryTranslation(dst *lexicon.Entry, src *lexicon.Translation, subID string) (*lexicon.Entry, error) {
	return withTranslation(dst, subID, func(t *lexicon.Translation) {
		f.copyTranslation(t, src)
	})
}

func withTranslation(e *lexicon.Entry, subID string, fn func(*lexicon.Translation)) (*lexicon.Entry, error) {
	idx := -1
	for i, t := range e.Translations {
		if t != nil && t.ID == subID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("grid: entry %s has no translation %s", e.ID, subID)
	}
	tcp := *e.Translations[idx]
	fn(&tcp)
	cp := e.Clone()
	cp.Translations = make([]*lexicon.Translation, len(e.Translations))
	copy(cp.Translations, e.Translations)
	cp.Translations[idx] = &tcp
	return cp, nil
}

func findTranslation(e *lexicon.Entry, id string) *lexicon.Translation {
	if e == nil {
		return nil
	}
	for _, t := range e.Translations {
		if t != nil && t.ID == id {
			return t
		}
	}
	return nil
}

func textField(name, label string, sortable bool, ptr func(*lexicon.Entry) *string) Field {
	return Field{
		Name:     name,
		Label:    label,
		Wire:     name,
		Scope:    ScopeEntry,
		Control:  ControlText,
		Sortable: sortable,
		get:      func(e *lexicon.Entry) string { return *ptr(e) },
		setEntry: func(dst *lexicon.Entry, value string) error {
			*ptr(dst) = value
			return nil
		},
		copyEntry: func(dst, src *lexicon.Entry) { *ptr(dst) = *ptr(src) },
	}
}

func translationField(name, label, wire string, ptr func(*lexicon.Translation) *string) Field {
	return Field{
		Name:    name,
		Label:   label,
		Wire:    wire,
		Scope:   ScopeTranslation,
		Control: ControlText,
		get: func(e *lexicon.Entry) string {
			if t := e.FirstTranslation(); t != nil {
				return *ptr(t)
			}
			return ""
		},
		setTranslation:  func(dst *lexicon.Translation, value string) { *ptr(dst) = value },
		copyTranslation: func(dst, src *lexicon.Translation) { *ptr(dst) = *ptr(src) },
	}
}

func readOnlyField(name, label string, sortable bool, get func(*lexicon.Entry) string) Field {
	return Field{Name: name, Label: label, Wire: name, Control: ControlReadOnly, Sortable: sortable, get: get}
}

var columns = []Field{
	textField("primary_name", "Entry Name", true, func(e *lexicon.Entry) *string { return &e.PrimaryName }),
	textField("original_script", "Original Script", false, func(e *lexicon.Entry) *string { return &e.OriginalScript }),
	{
		Name:     "language_code",
		Label:    "Lang",
		Wire:     "language_code",
		Scope:    ScopeEntry,
		Control:  ControlChoice,
		Sortable: true,
		choices:  lexicon.LanguageCodes,
		get:      func(e *lexicon.Entry) string { return e.LanguageCode },
		setEntry: func(dst *lexicon.Entry, value string) error {
			if !lexicon.ValidLanguage(value) {
				return fmt.Errorf("grid: unknown language code %q", value)
			}
			dst.LanguageCode = value
			return nil
		},
		copyEntry: func(dst, src *lexicon.Entry) { dst.LanguageCode = src.LanguageCode },
		payload: func(value string) (any, error) {
			if !lexicon.ValidLanguage(value) {
				return nil, fmt.Errorf("grid: unknown language code %q", value)
			}
			return value, nil
		},
	},
	{
		Name:       "entry_type",
		Label:      "Type",
		Wire:       "entry_type",
		Scope:      ScopeEntry,
		Control:    ControlChoice,
		Sortable:   true,
		AllowEmpty: true,
		choices:    lexicon.EntryTypes,
		get:        func(e *lexicon.Entry) string { return e.TypeCode() },
		setEntry: func(dst *lexicon.Entry, value string) error {
			typ, err := lexicon.ParseEntryType(value)
			if err != nil {
				return err
			}
			dst.EntryType = typ
			return nil
		},
		copyEntry: func(dst, src *lexicon.Entry) { dst.EntryType = src.EntryType },
		payload: func(value string) (any, error) {
			typ, err := lexicon.ParseEntryType(value)
			if err != nil {
				return nil, err
			}
			if typ == nil {
				return nil, nil
			}
			return string(*typ), nil
		},
	},
	{
		Name:    "alternative_names",
		Label:   "Alternative Names",
		Wire:    "alternative_names",
		Scope:   ScopeEntry,
		Control: ControlList,
		get:     func(e *lexicon.Entry) string { return lexicon.JoinNames(e.AlternativeNames) },
		setEntry: func(dst *lexicon.Entry, value string) error {
			dst.AlternativeNames = lexicon.SplitNames(value)
			return nil
		},
		copyEntry: func(dst, src *lexicon.Entry) { dst.AlternativeNames = src.AlternativeNames },
		payload: func(value string) (any, error) {
			return lexicon.SplitNames(value), nil
		},
	},
	textField("etymology", "Etymology", false, func(e *lexicon.Entry) *string { return &e.Etymology }),
	textField("definition", "Definition", false, func(e *lexicon.Entry) *string { return &e.Definition }),
	textField("historical_context", "Historical Context", false, func(e *lexicon.Entry) *string { return &e.HistoricalContext }),
	readOnlyField("is_verified", "Verified", true, func(e *lexicon.Entry) string {
		if e.IsVerified {
			return "yes"
		}
		return "no"
	}),
	textField("verification_notes", "Verification Notes", false, func(e *lexicon.Entry) *string { return &e.VerificationNotes }),
	translationField("first_translation", "Translation", "translated_name", func(t *lexicon.Translation) *string { return &t.TranslatedName }),
	translationField("translation_notes", "Translation Notes", "notes", func(t *lexicon.Translation) *string { return &t.Notes }),
	readOnlyField("translation_votes", "Votes", false, func(e *lexicon.Entry) string {
		t := e.FirstTranslation()
		if t == nil || (t.Upvotes == 0 && t.Downvotes == 0) {
			return ""
		}
		return "+" + strconv.Itoa(t.Upvotes) + " -" + strconv.Itoa(t.Downvotes)
	}),
	readOnlyField("created_at", "Created", true, func(e *lexicon.Entry) string { return formatDate(e.CreatedAt) }),
	readOnlyField("updated_at", "Updated", true, func(e *lexicon.Entry) string { return formatDate(e.UpdatedAt) }),
}

// DefaultColumns are shown when no column set is configured.
var DefaultColumns = []string{"primary_name", "language_code", "entry_type", "first_translation", "updated_at"}

// Columns returns every known column in display order.
func Columns() []Field {
	return append([]Field(nil), columns...)
}

// Column looks up any column, editable or not.
func Column(name string) (Field, bool) {
	for _, f := range columns {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Lookup returns the editable field called name. Unknown and read-only
// names are rejected.
func Lookup(name string) (Field, bool) {
	f, ok := Column(name)
	if !ok || !f.Editable() {
		return Field{}, false
	}
	return f, true
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
