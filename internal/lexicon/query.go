package lexicon

import "strings"

// PageSizes lists the page sizes the grid offers.
var PageSizes = []int{20, 50, 100}

const (
	DefaultPageSize = 50
	DefaultSortBy   = "updated_at"
)

// SortDirection orders a page.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Query selects one page of entries. Page is 1-based.
type Query struct {
	Search        string
	FuzzySearch   string
	LanguageCode  string
	EntryType     string
	SortBy        string
	SortDirection SortDirection
	Page          int
	PageSize      int
}

// Normalize fills defaults and clamps invalid paging values.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	q.FuzzySearch = strings.TrimSpace(q.FuzzySearch)
	q.LanguageCode = strings.TrimSpace(q.LanguageCode)
	q.EntryType = strings.TrimSpace(q.EntryType)
	if q.Page < 1 {
		q.Page = 1
	}
	if !validPageSize(q.PageSize) {
		q.PageSize = DefaultPageSize
	}
	if strings.TrimSpace(q.SortBy) == "" {
		q.SortBy = DefaultSortBy
		if q.SortDirection == "" {
			q.SortDirection = SortDesc
		}
	}
	if q.SortDirection != SortAsc && q.SortDirection != SortDesc {
		q.SortDirection = SortAsc
	}
	return q
}

// Skip is the offset of the first entry on the page.
func (q Query) Skip() int {
	q = q.Normalize()
	return (q.Page - 1) * q.PageSize
}

// NextPageSize cycles through PageSizes.
func NextPageSize(current int) int {
	for i, size := range PageSizes {
		if size == current {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return DefaultPageSize
}

func validPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Page is one page of entries as returned by the API.
type Page struct {
	Items []*Entry `json:"items"`
	Total int      `json:"total"`
	Skip  int      `json:"skip"`
	Limit int      `json:"limit"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
}
