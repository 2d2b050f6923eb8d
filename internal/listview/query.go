package listview

import "strings"

// Key identifies the data a listing needs. A fetch is required whenever the
// key changes.
type Key struct {
	Search string
	Page   int
}

// QueryState holds the user-controlled inputs of a listing.
// The zero value is not ready for use; call NewQueryState.
type QueryState struct {
	search string
	page   int
}

// NewQueryState returns the mount-time state: empty search on page 1.
func NewQueryState() *QueryState {
	return &QueryState{page: 1}
}

// SetSearch replaces the search text and always returns to page 1,
// even when s equals the current search.
func (q *QueryState) SetSearch(s string) {
	q.search = s
	q.page = 1
}

// SetPage moves to page p. The caller bounds p by the most recent page
// metadata; no validation against totals happens here.
func (q *QueryState) SetPage(p int) {
	q.page = p
}

func (q *QueryState) Search() string { return q.search }
func (q *QueryState) Page() int      { return q.page }

// Key returns the cache key. Surrounding whitespace in the search text does
// not produce a distinct key.
func (q *QueryState) Key() Key {
	return Key{Search: strings.TrimSpace(q.search), Page: q.page}
}
