package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", "notices.log"))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	assert.Equal(t, 5, total)
	require.Len(t, lines, 3)
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		assert.True(t, strings.Contains(lines[idx], want), "line %d = %q", idx, lines[idx])
	}
}

func TestTailOnMissingFile(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "notices.log"))
	require.NoError(t, err)
	lines, total := book.Tail(10)
	assert.Empty(t, lines)
	assert.Zero(t, total)

	var nilBook *Logbook
	nilBook.Info("ignored")
	lines, total = nilBook.Tail(3)
	assert.Nil(t, lines)
	assert.Zero(t, total)
}

func TestRecentParsesLevels(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "notices.log"))
	require.NoError(t, err)
	book.clock = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

	book.Info("Saved Primary name")
	book.Error("Could not save Language;\nchange reverted")
	book.Append(LevelWarn, "   ")

	recent, total := book.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, LevelInfo, recent[0].Level)
	assert.Equal(t, "Saved Primary name", recent[0].Message)
	assert.Equal(t, LevelError, recent[1].Level)
	assert.Equal(t, "Could not save Language; change reverted", recent[1].Message)
	assert.True(t, recent[1].At.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))
}

func TestParseLineRejectsGarbage(t *testing.T) {
	_, ok := ParseLine("not a line")
	assert.False(t, ok)
	_, ok = ParseLine("2024-03-01T09:30:00Z DEBUG nope")
	assert.False(t, ok)
	line, ok := ParseLine("2024-03-01T09:30:00Z INFO  Saved")
	require.True(t, ok)
	assert.Equal(t, "Saved", line.Message)
}
