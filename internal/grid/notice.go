package grid

import (
	"context"

	"github.com/kingrea/lexicon/internal/lexicon"
)

// Persister writes single-field updates to the backing store.
type Persister interface {
	UpdateEntryField(ctx context.Context, entryID, field string, value any) (*lexicon.Entry, error)
	UpdateTranslationField(ctx context.Context, translationID, field string, value any) (*lexicon.Translation, error)
}

// NoticeLevel grades a notice for display.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "INFO"
	NoticeWarn  NoticeLevel = "WARN"
	NoticeError NoticeLevel = "ERROR"
)

// Notice is a user-facing message about a save.
type Notice struct {
	Level   NoticeLevel
	Message string
	Target  EditTarget
	Err     error
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) {
	if f != nil {
		f(n)
	}
}

// Logger is the subset of a leveled logger the editor writes to.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Warn(interface{}, ...interface{})  {}
func (nopLogger) Error(interface{}, ...interface{}) {}
