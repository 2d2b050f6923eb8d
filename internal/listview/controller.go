// Package listview implements the paginated, searchable list controller
// shared by every listing screen.
//
// A Controller is owned by a single event loop. Mutators return a Request
// when a fetch must be issued; the caller runs Fetch off the loop and hands
// the Result back to Commit on the loop. Commit drops results whose key is
// no longer current, so a slow response can never overwrite a newer one.
package listview

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tinytelemetry/orbit/internal/model"
	"github.com/tinytelemetry/orbit/internal/paging"
)

// Status is the coarse render status of a listing.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// RenderState is everything a screen needs to draw a listing.
type RenderState[T any] struct {
	Status     Status
	Err        error
	Items      []T
	Window     []int
	Shortcuts  paging.Shortcuts
	Page       int
	TotalPages int
	TotalItems int
	HasPrev    bool
	HasNext    bool
	PrevPage   int // 0 when HasPrev is false
	NextPage   int // 0 when HasNext is false

	// Stale is set while Loading still shows the previous Ready result.
	Stale bool
}

// Request describes one fetch to run off the event loop.
type Request struct {
	Key      Key
	Filter   model.Filter
	PageSize int
	Seq      uint64
}

// Result carries a completed fetch back to the event loop.
type Result[T any] struct {
	Request Request
	Page    model.Page[T]
	Err     error
}

// Config tunes a Controller.
type Config struct {
	Name       string // used in logs
	PageSize   int
	MaxButtons int
	Logger     zerolog.Logger
}

// Controller composes QueryState, a PagedSource and the window calculator.
type Controller[T any] struct {
	name       string
	source     model.PagedSource[T]
	pageSize   int
	maxButtons int
	log        zerolog.Logger

	query      *QueryState
	state      RenderState[T]
	current    Key
	hasCurrent bool
	inflight   map[Key]struct{}
	seq        uint64
}

// New creates a controller in the Idle state.
func New[T any](source model.PagedSource[T], cfg Config) *Controller[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.LaunchPageSize
	}
	if cfg.MaxButtons <= 0 {
		cfg.MaxButtons = model.MaxPageButtons
	}
	return &Controller[T]{
		name:       cfg.Name,
		source:     source,
		pageSize:   cfg.PageSize,
		maxButtons: cfg.MaxButtons,
		log:        cfg.Logger.With().Str("list", cfg.Name).Logger(),
		query:      NewQueryState(),
		inflight:   make(map[Key]struct{}),
	}
}

// State returns the current render state.
func (c *Controller[T]) State() RenderState[T] { return c.state }

// Key returns the current cache key.
func (c *Controller[T]) Key() Key { return c.query.Key() }

// Search returns the committed search text.
func (c *Controller[T]) Search() string { return c.query.Search() }

// InFlight returns the number of outstanding requests.
func (c *Controller[T]) InFlight() int { return len(c.inflight) }

// Mount starts the first fetch for the initial state.
func (c *Controller[T]) Mount() (Request, bool) {
	return c.issue(false)
}

// SetSearch commits new search text and returns to page 1.
func (c *Controller[T]) SetSearch(s string) (Request, bool) {
	c.query.SetSearch(s)
	return c.issue(false)
}

// SubmitSearch commits search text and re-fetches even when the key is
// unchanged, so submitting the same query twice refreshes it.
func (c *Controller[T]) SubmitSearch(s string) (Request, bool) {
	c.query.SetSearch(s)
	return c.issue(true)
}

// SetPage moves to page p.
func (c *Controller[T]) SetPage(p int) (Request, bool) {
	c.query.SetPage(p)
	return c.issue(false)
}

// NextPage follows the nextPage link of the latest result.
func (c *Controller[T]) NextPage() (Request, bool) {
	if !c.state.HasNext {
		return Request{}, false
	}
	return c.SetPage(c.state.NextPage)
}

// PrevPage follows the prevPage link of the latest result.
func (c *Controller[T]) PrevPage() (Request, bool) {
	if !c.state.HasPrev {
		return Request{}, false
	}
	return c.SetPage(c.state.PrevPage)
}

// FirstPage jumps to page 1.
func (c *Controller[T]) FirstPage() (Request, bool) {
	if c.state.TotalPages < 1 {
		return Request{}, false
	}
	return c.SetPage(1)
}

// LastPage jumps to the last page of the latest result.
func (c *Controller[T]) LastPage() (Request, bool) {
	if c.state.TotalPages < 1 {
		return Request{}, false
	}
	return c.SetPage(c.state.TotalPages)
}

// Retry re-issues the fetch for the current key unless one is in flight.
func (c *Controller[T]) Retry() (Request, bool) {
	return c.issue(true)
}

func (c *Controller[T]) issue(force bool) (Request, bool) {
	key := c.query.Key()
	if !force && c.hasCurrent && key == c.current {
		return Request{}, false
	}

	c.current = key
	c.hasCurrent = true
	c.enterLoading()

	if _, busy := c.inflight[key]; busy {
		c.log.Debug().Str("search", key.Search).Int("page", key.Page).Msg("request already in flight")
		return Request{}, false
	}

	c.inflight[key] = struct{}{}
	c.seq++
	return Request{
		Key:      key,
		Filter:   model.NameContains(key.Search),
		PageSize: c.pageSize,
		Seq:      c.seq,
	}, true
}

func (c *Controller[T]) enterLoading() {
	if c.state.Status == StatusReady || (c.state.Status == StatusLoading && c.state.Stale) {
		c.state.Status = StatusLoading
		c.state.Stale = true
		return
	}
	c.state = RenderState[T]{Status: StatusLoading}
}

// Fetch performs the request. It only reads immutable controller fields and
// is safe to call from any goroutine.
func (c *Controller[T]) Fetch(ctx context.Context, req Request) Result[T] {
	start := time.Now()
	page, err := c.source.Fetch(ctx, req.Filter, req.PageSize, req.Key.Page)
	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Uint64("seq", req.Seq).
		Str("search", req.Key.Search).
		Int("page", req.Key.Page).
		Dur("took", time.Since(start)).
		Msg("fetch finished")
	return Result[T]{Request: req, Page: page, Err: err}
}

// Commit applies a finished fetch. It returns false when the result belongs
// to a superseded key and was discarded.
func (c *Controller[T]) Commit(res Result[T]) bool {
	delete(c.inflight, res.Request.Key)

	if !c.hasCurrent || res.Request.Key != c.current {
		c.log.Debug().Uint64("seq", res.Request.Seq).Msg("discarding stale response")
		return false
	}

	if res.Err != nil {
		c.state = RenderState[T]{Status: StatusError, Err: res.Err}
		return true
	}

	p := res.Page
	window, err := paging.Window(p.Page, p.TotalPages, c.maxButtons)
	if err != nil {
		c.state = RenderState[T]{Status: StatusError, Err: fmt.Errorf("%s: %w", c.name, err)}
		return true
	}

	st := RenderState[T]{
		Status:     StatusReady,
		Items:      p.Items,
		Window:     window,
		Shortcuts:  paging.Controls(window, p.TotalPages),
		Page:       p.Page,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
		HasPrev:    p.HasPrevPage,
		HasNext:    p.HasNextPage,
	}
	if p.PrevPage != nil {
		st.PrevPage = *p.PrevPage
	}
	if p.NextPage != nil {
		st.NextPage = *p.NextPage
	}
	c.state = st
	return true
}
