package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/lexicon/internal/lexicon"
)

func TestStoreReplaceStartsNewGeneration(t *testing.T) {
	s := NewStore()
	assert.Equal(t, uint64(0), s.Generation())
	s.Replace(&lexicon.Page{Items: []*lexicon.Entry{{ID: "e1"}}, Total: 41, Page: 2, Pages: 3})
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 41, s.Total())
	assert.Equal(t, 2, s.Page())
	assert.Equal(t, 3, s.Pages())

	s.Replace(nil)
	assert.Equal(t, uint64(2), s.Generation())
	assert.Zero(t, s.Len())
}

func TestStoreUpdateCopiesOnlyTouchedEntry(t *testing.T) {
	s := NewStore()
	e1, e2, e3 := &lexicon.Entry{ID: "e1"}, &lexicon.Entry{ID: "e2"}, &lexicon.Entry{ID: "e3"}
	s.Replace(&lexicon.Page{Items: []*lexicon.Entry{e1, e2, e3}})
	before := s.Entries()

	changed := s.Update("e2", func(cur *lexicon.Entry) *lexicon.Entry {
		cp := cur.Clone()
		cp.PrimaryName = "Hera"
		return cp
	})
	require.True(t, changed)
	after := s.Entries()

	assert.Same(t, e1, after[0])
	assert.Same(t, e3, after[2])
	assert.NotSame(t, e2, after[1])
	assert.Equal(t, "Hera", after[1].PrimaryName)
	assert.Empty(t, e2.PrimaryName, "original entry must not be mutated")
	assert.Same(t, e2, before[1], "previous page slice must not be mutated")
}

func TestStoreUpdateUnknownOrNil(t *testing.T) {
	s := NewStore()
	s.Replace(&lexicon.Page{Items: []*lexicon.Entry{{ID: "e1"}}})
	before := s.Entries()

	assert.False(t, s.Update("missing", func(cur *lexicon.Entry) *lexicon.Entry { return cur.Clone() }))
	assert.False(t, s.Update("e1", func(*lexicon.Entry) *lexicon.Entry { return nil }))
	assert.Same(t, before[0], s.Entries()[0])
	assert.Nil(t, s.Get("missing"))
}
