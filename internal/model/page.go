package model

import "fmt"

// Page is one page of a listing plus the metadata needed to paginate it.
// Build pages with NewPage so the navigation flags stay consistent.
type Page[T any] struct {
	Items       []T
	Page        int
	TotalPages  int
	TotalItems  int
	PageSize    int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    *int
	NextPage    *int
}

// NewPage derives the navigation metadata from page and totalPages.
func NewPage[T any](items []T, page, totalPages, totalItems, pageSize int) Page[T] {
	p := Page[T]{
		Items:       items,
		Page:        page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PageSize:    pageSize,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	return p
}

// TotalPagesFor returns ceil(total/pageSize), never less than one.
func TotalPagesFor(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Validate checks the page against the navigation invariants.
func (p Page[T]) Validate() error {
	if p.TotalPages < 1 {
		return fmt.Errorf("totalPages %d < 1", p.TotalPages)
	}
	if p.Page < 1 || p.Page > p.TotalPages {
		return fmt.Errorf("page %d outside [1, %d]", p.Page, p.TotalPages)
	}
	if p.HasPrevPage != (p.Page > 1) {
		return fmt.Errorf("hasPrevPage=%t inconsistent with page %d", p.HasPrevPage, p.Page)
	}
	if p.HasNextPage != (p.Page < p.TotalPages) {
		return fmt.Errorf("hasNextPage=%t inconsistent with page %d of %d", p.HasNextPage, p.Page, p.TotalPages)
	}
	if (p.PrevPage == nil) == p.HasPrevPage || (p.PrevPage != nil && *p.PrevPage != p.Page-1) {
		return fmt.Errorf("prevPage inconsistent with page %d", p.Page)
	}
	if (p.NextPage == nil) == p.HasNextPage || (p.NextPage != nil && *p.NextPage != p.Page+1) {
		return fmt.Errorf("nextPage inconsistent with page %d", p.Page)
	}
	return nil
}
