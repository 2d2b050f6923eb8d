package model

import "context"

// PagedSource fetches one page of a filtered, sorted listing.
// Ordering is a property of the implementation and must be stable so that
// no item appears on two pages or is skipped.
type PagedSource[T any] interface {
	Fetch(ctx context.Context, filter Filter, pageSize, page int) (Page[T], error)
}

// PagedSourceFunc adapts a function to PagedSource.
type PagedSourceFunc[T any] func(ctx context.Context, filter Filter, pageSize, page int) (Page[T], error)

func (f PagedSourceFunc[T]) Fetch(ctx context.Context, filter Filter, pageSize, page int) (Page[T], error) {
	return f(ctx, filter, pageSize, page)
}

// Catalog is the read contract used by the terminal client: two listings plus
// detail lookups. Implemented by the SpaceX HTTP client and the fixture store.
type Catalog interface {
	Launches() PagedSource[Launch]
	Rockets() PagedSource[Rocket]
	Launch(ctx context.Context, id string) (Launch, error)
	Rocket(ctx context.Context, id string) (Rocket, error)
}
