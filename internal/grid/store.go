package grid

import (
	"sync"

	"github.com/kingrea/lexicon/internal/lexicon"
)

// Store is the single mutable container for the page on screen.
type Store struct {
	mu         sync.RWMutex
	entries    []*lexicon.Entry
	total      int
	page       int
	pages      int
	generation uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a freshly fetched page. Every fetch is a full replace and
// starts a new generation.
func (s *Store) Replace(page *lexicon.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if page == nil {
		s.entries, s.total, s.page, s.pages = nil, 0, 0, 0
		return
	}
	s.entries = append([]*lexicon.Entry(nil), page.Items...)
	s.total = page.Total
	s.page = page.Page
	s.pages = page.Pages
}

// Entries returns the current page. The slice and the entries it points to
// must be treated as read-only.
func (s *Store) Entries() []*lexicon.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Get returns the entry with the given id, or nil.
func (s *Store) Get(id string) *lexicon.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.entries[idx]
	}
	return nil
}

// Update replaces the entry with the given id by the copy fn returns. fn
// receives the current entry and must not modify it; returning nil leaves
// the page untouched. Update reports whether the page changed.
func (s *Store) Update(id string, fn func(current *lexicon.Entry) *lexicon.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	next := fn(s.entries[idx])
	if next == nil {
		return false
	}
	entries := make([]*lexicon.Entry, len(s.entries))
	copy(entries, s.entries)
	entries[idx] = next
	s.entries = entries
	return true
}

// Generation identifies the fetch the current page came from.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len is the number of entries on the page.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Total is the number of entries matching the current query.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Page is the 1-based page number of the current page.
func (s *Store) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Pages is the number of pages matching the current query.
func (s *Store) Pages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e != nil && e.ID == id {
			return i
		}
	}
	return -1
}
