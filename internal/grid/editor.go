package grid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingrea/lexicon/internal/lexicon"
)

// DefaultDedupWindow is how long an identical commit is treated as a repeat.
const DefaultDedupWindow = 50 * time.Millisecond

var errNoPersister = errors.New("grid: no persister configured")

// EditTarget identifies the cell open for editing. SubRecordID is set for
// translation fields.
type EditTarget struct {
	RecordID    string
	Field       string
	SubRecordID string
}

// Save is a committed edit whose optimistic value is already in the Store
// and whose persistence has not run yet.
type Save struct {
	Target     EditTarget
	Value      string
	Wire       string
	Payload    any
	Scope      Scope
	Revision   uint64
	Generation uint64

	before    *lexicon.Entry
	persister Persister
}

// Result is the outcome of Save.Persist.
type Result struct {
	Save        *Save
	Entry       *lexicon.Entry
	Translation *lexicon.Translation
	Err         error
}

// Outcome reports what Settle did with a Result.
type Outcome int

const (
	// OutcomeConfirmed: the server stored the optimistic value.
	OutcomeConfirmed Outcome = iota
	// OutcomeReconciled: the server stored a different value, which replaced
	// the optimistic one.
	OutcomeReconciled
	// OutcomeRolledBack: persistence failed and the field was restored.
	OutcomeRolledBack
	// OutcomeStale: a later commit to the same field superseded this one.
	OutcomeStale
	// OutcomeDiscarded: the page was refetched after the commit.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeReconciled:
		return "reconciled"
	case OutcomeRolledBack:
		return "rolled back"
	case OutcomeStale:
		return "stale"
	case OutcomeDiscarded:
		return "discarded"
	}
	return "unknown"
}

// KeyResult tells the caller what HandleKey did with a key.
type KeyResult struct {
	// Consumed keys must not reach row or table key handlers.
	Consumed bool
	// Save is set when the key committed an edit.
	Save *Save
}

type editState struct {
	target     EditTarget
	pending    string
	generation uint64
}

type fieldKey struct {
	recordID string
	field    string
}

type commitKey struct {
	fieldKey
	value string
}

// Editor coordinates the single active edit with the Store and a Persister.
type Editor struct {
	store     *Store
	persister Persister
	notifier  Notifier
	logger    Logger
	clock     func() time.Time
	window    time.Duration

	active      *editState
	recent      map[commitKey]time.Time
	revisions   map[fieldKey]uint64
	lastFailure *Result
}

// Option customizes an Editor.
type Option func(*Editor)

// WithNotifier routes save notices to n.
func WithNotifier(n Notifier) Option {
	return func(e *Editor) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock allows tests to control the dedup window.
func WithClock(clock func() time.Time) Option {
	return func(e *Editor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithDedupWindow sets the duplicate-commit window. Zero disables dedup.
func WithDedupWindow(d time.Duration) Option {
	return func(e *Editor) {
		if d >= 0 {
			e.window = d
		}
	}
}

// NewEditor wires an editor to the page store and the persister.
func NewEditor(store *Store, persister Persister, opts ...Option) *Editor {
	e := &Editor{
		store:     store,
		persister: persister,
		notifier:  NotifierFunc(nil),
		logger:    nopLogger{},
		clock:     time.Now,
		window:    DefaultDedupWindow,
		recent:    map[commitKey]time.Time{},
		revisions: map[fieldKey]uint64{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Store returns the page store the editor writes to.
func (e *Editor) Store() *Store {
	return e.store
}

// StartEdit opens (recordID, field) for editing with currentValue as the
// pending value. Any previously active edit is discarded.
func (e *Editor) StartEdit(recordID, field, currentValue string, subRecordID ...string) {
	target := EditTarget{RecordID: recordID, Field: field}
	if len(subRecordID) > 0 {
		target.SubRecordID = subRecordID[0]
	}
	e.active = &editState{
		target:     target,
		pending:    currentValue,
		generation: e.store.Generation(),
	}
}

// UpdatePending replaces the pending value of the active edit.
func (e *Editor) UpdatePending(value string) {
	if e.active == nil {
		return
	}
	e.active.pending = value
}

// Cancel drops the active edit without touching the page or the network.
func (e *Editor) Cancel() {
	e.active = nil
}

// Blur is called when the edit control loses focus. Saves that were already
// committed keep running.
func (e *Editor) Blur() {
	e.Cancel()
}

// Active returns the active edit target.
func (e *Editor) Active() (EditTarget, bool) {
	if e.active == nil {
		return EditTarget{}, false
	}
	return e.active.target, true
}

// Pending returns the pending value of the active edit.
func (e *Editor) Pending() string {
	if e.active == nil {
		return ""
	}
	return e.active.pending
}

// IsEditing reports whether (recordID, field) is the active cell.
func (e *Editor) IsEditing(recordID, field string) bool {
	return e.active != nil && e.active.target.RecordID == recordID && e.active.target.Field == field
}

// Commit applies the active edit to the page and returns the Save that
// persists it. override, when given, wins over the pending value; choice
// pickers use it so a selection never depends on a prior UpdatePending.
// Commit returns nil when there is nothing to persist: no active edit, a
// rejected edit, or a repeat of an identical commit inside the dedup window.
// The edit is closed in every case.
func (e *Editor) Commit(override ...string) *Save {
	st := e.active
	if st == nil {
		return nil
	}
	e.active = nil
	value := st.pending
	if len(override) > 0 {
		value = override[0]
	}
	return e.commit(st.target, value, st.generation, true)
}

// HandleKey routes a key press from the active edit control. "enter"
// commits and "esc" cancels; both are consumed. Other keys, and every key
// while nothing is being edited, pass through.
func (e *Editor) HandleKey(key string) KeyResult {
	if e.active == nil {
		return KeyResult{}
	}
	switch key {
	case "enter":
		return KeyResult{Consumed: true, Save: e.Commit()}
	case "esc":
		e.Cancel()
		return KeyResult{Consumed: true}
	}
	return KeyResult{}
}

// LastFailure returns the most recent save that was rolled back.
func (e *Editor) LastFailure() (Result, bool) {
	if e.lastFailure == nil {
		return Result{}, false
	}
	return *e.lastFailure, true
}

// Retry re-applies the value of a failed save and returns a new Save for it.
// The retry targets the entry as it is on the current page.
func (e *Editor) Retry(res Result) *Save {
	if res.Save == nil || res.Err == nil {
		return nil
	}
	if e.lastFailure != nil && e.lastFailure.Save == res.Save {
		e.lastFailure = nil
	}
	return e.commit(res.Save.Target, res.Save.Value, e.store.Generation(), false)
}

func (e *Editor) commit(target EditTarget, value string, generation uint64, dedup bool) *Save {
	field, ok := Lookup(target.Field)
	if !ok {
		e.reject(target, "unknown field")
		return nil
	}
	if generation != e.store.Generation() {
		e.reject(target, "page reloaded while editing")
		return nil
	}
	record := e.store.Get(target.RecordID)
	if record == nil {
		e.reject(target, "entry not on page")
		return nil
	}
	if field.Scope == ScopeTranslation {
		subID, ok := resolveTranslation(record, target.SubRecordID)
		if !ok {
			e.reject(target, "no translation to edit")
			return nil
		}
		target.SubRecordID = subID
	}
	payload, err := field.Payload(value)
	if err != nil {
		e.reject(target, err.Error())
		return nil
	}

	key := commitKey{fieldKey: fieldKey{target.RecordID, target.Field}, value: value}
	now := e.clock()
	if dedup && e.isDuplicate(key, now) {
		e.logger.Debug("grid: duplicate commit dropped", "entry", target.RecordID, "field", target.Field)
		return nil
	}

	var applyErr error
	changed := e.store.Update(target.RecordID, func(cur *lexicon.Entry) *lexicon.Entry {
		next, err := field.apply(cur, target.SubRecordID, value)
		if err != nil {
			applyErr = err
			return nil
		}
		return next
	})
	if applyErr != nil || !changed {
		reason := "entry not on page"
		if applyErr != nil {
			reason = applyErr.Error()
		}
		e.reject(target, reason)
		return nil
	}

	e.revisions[key.fieldKey]++
	return &Save{
		Target:     target,
		Value:      value,
		Wire:       field.Wire,
		Payload:    payload,
		Scope:      field.Scope,
		Revision:   e.revisions[key.fieldKey],
		Generation: generation,
		before:     record,
		persister:  e.persister,
	}
}

func (e *Editor) isDuplicate(key commitKey, now time.Time) bool {
	for k, at := range e.recent {
		if now.Sub(at) >= e.window {
			delete(e.recent, k)
		}
	}
	if at, ok := e.recent[key]; ok && now.Sub(at) < e.window {
		return true
	}
	if e.window > 0 {
		e.recent[key] = now
	}
	return false
}

func (e *Editor) reject(target EditTarget, reason string) {
	e.logger.Warn("grid: edit rejected", "entry", target.RecordID, "field", target.Field, "reason", reason)
}

// resolveTranslation returns the id of the translation a translation field
// edits: the entry's first translation, which an explicit id must match.
func resolveTranslation(record *lexicon.Entry, explicit string) (string, bool) {
	first := record.FirstTranslation()
	if first == nil || first.ID == "" {
		return "", false
	}
	if explicit != "" && explicit != first.ID {
		return "", false
	}
	return first.ID, true
}

// Persist writes the saved value through the persister. It never panics and
// never returns an error outside the Result.
func (s *Save) Persist(ctx context.Context) (res Result) {
	res.Save = s
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("grid: persist %s: %v", s.Target.Field, r)
		}
	}()
	if s.persister == nil {
		res.Err = errNoPersister
		return res
	}
	switch s.Scope {
	case ScopeTranslation:
		res.Translation, res.Err = s.persister.UpdateTranslationField(ctx, s.Target.SubRecordID, s.Wire, s.Payload)
	default:
		res.Entry, res.Err = s.persister.UpdateEntryField(ctx, s.Target.RecordID, s.Wire, s.Payload)
	}
	return res
}

// Settle folds a persistence result back into the page.
func (e *Editor) Settle(res Result) Outcome {
	s := res.Save
	if s == nil {
		return OutcomeDiscarded
	}
	field, _ := Lookup(s.Target.Field)
	key := fieldKey{s.Target.RecordID, s.Target.Field}
	if e.revisions[key] != s.Revision {
		e.logger.Debug("grid: stale save result", "entry", s.Target.RecordID, "field", s.Target.Field, "revision", s.Revision)
		return OutcomeStale
	}
	if e.store.Generation() != s.Generation {
		e.logger.Debug("grid: save result for a replaced page", "entry", s.Target.RecordID, "field", s.Target.Field)
		return OutcomeDiscarded
	}

	if res.Err != nil {
		e.store.Update(s.Target.RecordID, func(cur *lexicon.Entry) *lexicon.Entry {
			next, err := field.carry(cur, s.before, s.Target.SubRecordID)
			if err != nil {
				return nil
			}
			return next
		})
		failed := res
		e.lastFailure = &failed
		e.logger.Error("grid: save failed", "entry", s.Target.RecordID, "field", s.Target.Field, "err", res.Err)
		e.notifier.Notify(Notice{
			Level:   NoticeError,
			Message: fmt.Sprintf("Could not save %s; change reverted (r to retry)", field.Label),
			Target:  s.Target,
			Err:     res.Err,
		})
		return OutcomeRolledBack
	}

	outcome := OutcomeConfirmed
	e.store.Update(s.Target.RecordID, func(cur *lexicon.Entry) *lexicon.Entry {
		next, err := e.reconcile(field, cur, res)
		if err != nil || next == nil {
			return nil
		}
		outcome = OutcomeReconciled
		return next
	})
	e.notifier.Notify(Notice{Level: NoticeInfo, Message: "Saved " + field.Label, Target: s.Target})
	return outcome
}

// reconcile returns a copy of cur carrying the server's value for the field,
// or nil when the server agrees with the page.
func (e *Editor) reconcile(field Field, cur *lexicon.Entry, res Result) (*lexicon.Entry, error) {
	s := res.Save
	switch field.Scope {
	case ScopeEntry:
		if res.Entry == nil || field.Value(res.Entry) == field.Value(cur) {
			return nil, nil
		}
		return field.carry(cur, res.Entry, "")
	case ScopeTranslation:
		if res.Translation == nil {
			return nil, nil
		}
		served := &lexicon.Entry{Translations: []*lexicon.Translation{res.Translation}}
		current := findTranslation(cur, s.Target.SubRecordID)
		if current == nil {
			return nil, nil
		}
		if field.Value(served) == field.Value(&lexicon.Entry{Translations: []*lexicon.Translation{current}}) {
			return nil, nil
		}
		return field.carryTranslation(cur, res.Translation, s.Target.SubRecordID)
	}
	return nil, nil
}
