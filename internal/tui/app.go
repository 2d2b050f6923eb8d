package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// App is the top-level Bubble Tea model that routes between pages.
type App struct {
	pages      map[string]Page
	activePage string
	params     interface{}
	width      int
	height     int

	// guard may redirect a navigation, e.g. to the login page when no
	// session token is present.
	guard func(target string) string

	ticking bool
}

// NewApp creates a new App with the given pages. The first page is the default.
func NewApp(pages ...Page) *App {
	pageMap := make(map[string]Page, len(pages))
	var firstID string
	for i, p := range pages {
		pageMap[p.ID()] = p
		if i == 0 {
			firstID = p.ID()
		}
	}
	return &App{
		pages:      pageMap,
		activePage: firstID,
	}
}

// Active returns the ID of the page currently shown.
func (a *App) Active() string { return a.activePage }

// Start selects the page shown on Init.
func (a *App) Start(pageID string, params interface{}) {
	if _, ok := a.pages[pageID]; ok {
		a.activePage = pageID
		a.params = params
	}
}

func (a *App) Init() tea.Cmd {
	target := a.activePage
	if a.guard != nil {
		target = a.guard(target)
	}
	a.activePage = ""
	return a.switchTo(target, a.params)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case SpinnerTickMsg:
		a.ticking = false
	case routedMsg:
		if id := msg.target(); id != a.activePage {
			if p, ok := a.pages[id]; ok {
				cmd, _ := p.Update(msg)
				return a, cmd
			}
			return a, nil
		}
	}

	p, ok := a.pages[a.activePage]
	if !ok {
		return a, nil
	}

	cmd, nav := p.Update(msg)
	if nav != nil {
		if _, exists := a.pages[nav.PageID]; exists {
			return a, tea.Batch(cmd, a.switchTo(nav.PageID, nav.Params))
		}
	}
	return a, tea.Batch(cmd, a.spin())
}

func (a *App) switchTo(pageID string, params interface{}) tea.Cmd {
	if a.guard != nil {
		pageID = a.guard(pageID)
	}
	if old, ok := a.pages[a.activePage]; ok && a.activePage != pageID {
		if l, ok := old.(leaver); ok {
			l.Leave()
		}
	}
	p, ok := a.pages[pageID]
	if !ok {
		return nil
	}
	a.activePage = pageID
	if e, ok := p.(enterer); ok {
		e.Enter(params)
	}
	return tea.Batch(p.Init(), a.spin())
}

// spin schedules a spinner tick while the active page is loading. Only one
// tick is ever outstanding.
func (a *App) spin() tea.Cmd {
	if a.ticking {
		return nil
	}
	l, ok := a.pages[a.activePage].(loader)
	if !ok || !l.Loading() {
		return nil
	}
	a.ticking = true
	return tea.Tick(120*time.Millisecond, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

func (a *App) View() string {
	if p, ok := a.pages[a.activePage]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
