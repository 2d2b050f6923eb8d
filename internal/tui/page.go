package tui

import tea "github.com/charmbracelet/bubbletea"

// Page IDs.
const (
	PageLogin    = "login"
	PageLaunches = "launches"
	PageRockets  = "rockets"
	PageLaunch   = "launch"
	PageRocket   = "rocket"
)

// Page represents a top-level screen in the TUI (login, listings, details).
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	PageID string
	Params interface{}
}

// enterer is implemented by pages that take navigation params.
// Enter runs before Init on every switch to the page.
type enterer interface {
	Enter(params interface{})
}

// leaver is implemented by pages that stop background work when hidden.
type leaver interface {
	Leave()
}

// loader reports whether a page is waiting on a fetch, which keeps the
// spinner ticking.
type loader interface {
	Loading() bool
}

// routedMsg is delivered to its target page even when that page is not
// active, so fetch results are never lost to a page switch.
type routedMsg interface {
	target() string
}

// detailParams opens a detail page for ID and remembers where to go back to.
type detailParams struct {
	ID   string
	Back string
}
