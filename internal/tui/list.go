package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/orbit/internal/listview"
	"github.com/tinytelemetry/orbit/internal/logging"
	"github.com/tinytelemetry/orbit/internal/model"
	"github.com/tinytelemetry/orbit/internal/paging"
)

// listResultMsg carries a finished fetch back to the list page that issued it.
type listResultMsg[T any] struct {
	page string
	res  listview.Result[T]
}

func (m listResultMsg[T]) target() string { return m.page }

// listSpec parameterizes a list page by item type.
type listSpec[T model.Item] struct {
	id       string
	title    string
	noun     string // plural, used in messages
	other    string // page reached with tab
	detail   string
	pageSize int
	source   model.PagedSource[T]
	row      func(item T, width int) string
	// aside renders an optional panel under the rows, e.g. a chart.
	aside func(items []T, width int) string
}

// listPage is one searchable, paginated listing. Launches and rockets are
// both instances of it.
type listPage[T model.Item] struct {
	env  *env
	spec listSpec[T]
	ctrl *listview.Controller[T]

	search    textinput.Model
	searching bool
	cursor    int
	mounted   bool
	help      help.Model
}

func newListPage[T model.Item](e *env, spec listSpec[T]) *listPage[T] {
	search := textinput.New()
	search.Placeholder = "Search " + spec.noun + " by name"
	search.Prompt = "/ "
	search.CharLimit = 100

	ctrl := listview.New[T](spec.source, listview.Config{
		Name:       spec.id,
		PageSize:   spec.pageSize,
		MaxButtons: model.MaxPageButtons,
		Logger:     logging.Component(e.log, "listview"),
	})

	return &listPage[T]{
		env:    e,
		spec:   spec,
		ctrl:   ctrl,
		search: search,
		help:   help.New(),
	}
}

func (p *listPage[T]) ID() string { return p.spec.id }

// Init mounts the listing the first time it is shown. Later visits keep the
// search, page and items from before.
func (p *listPage[T]) Init() tea.Cmd {
	if p.mounted {
		return nil
	}
	p.mounted = true
	return p.fetch(p.ctrl.Mount())
}

func (p *listPage[T]) Loading() bool {
	return p.ctrl.State().Status == listview.StatusLoading
}

// fetch runs req off the event loop when the controller asked for it.
func (p *listPage[T]) fetch(req listview.Request, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	ctrl, id, e := p.ctrl, p.spec.id, p.env
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		return listResultMsg[T]{page: id, res: ctrl.Fetch(ctx, req)}
	}
}

func (p *listPage[T]) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case listResultMsg[T]:
		if p.ctrl.Commit(msg.res) {
			p.clampCursor()
		}
		return nil, nil
	case tea.KeyMsg:
		if p.searching {
			return p.updateSearch(msg), nil
		}
		return p.handleKey(msg)
	}
	return nil, nil
}

func (p *listPage[T]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		p.searching = false
		p.search.Blur()
		p.cursor = 0
		return p.fetch(p.ctrl.SubmitSearch(p.search.Value()))
	case "esc", "escape":
		p.searching = false
		p.search.Blur()
		p.search.SetValue("")
		p.cursor = 0
		return p.fetch(p.ctrl.SetSearch(""))
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	return cmd
}

func (p *listPage[T]) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	keys := p.env.keys
	st := p.ctrl.State()

	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, nil
	case key.Matches(msg, keys.Search):
		p.searching = true
		p.search.Focus()
		return textinput.Blink, nil
	case key.Matches(msg, keys.Escape):
		if p.ctrl.Search() == "" && p.search.Value() == "" {
			return nil, nil
		}
		p.search.SetValue("")
		p.cursor = 0
		return p.fetch(p.ctrl.SetSearch("")), nil
	case key.Matches(msg, keys.Help):
		p.help.ShowAll = !p.help.ShowAll
	case key.Matches(msg, keys.Logout):
		return p.env.logout()
	case key.Matches(msg, keys.NextList):
		return nil, &PageNav{PageID: p.spec.other}
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(st.Items)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if p.cursor < len(st.Items) {
			id := st.Items[p.cursor].ItemID()
			return nil, &PageNav{PageID: p.spec.detail, Params: detailParams{ID: id, Back: p.spec.id}}
		}
	case key.Matches(msg, keys.PrevPage):
		return p.move(p.ctrl.PrevPage()), nil
	case key.Matches(msg, keys.NextPage):
		return p.move(p.ctrl.NextPage()), nil
	case key.Matches(msg, keys.FirstPage):
		return p.move(p.ctrl.FirstPage()), nil
	case key.Matches(msg, keys.LastPage):
		return p.move(p.ctrl.LastPage()), nil
	case key.Matches(msg, keys.JumpPage):
		// Digits pick by position in the window, not by page number.
		if i := int(msg.String()[0] - '1'); i < len(st.Window) {
			return p.move(p.ctrl.SetPage(st.Window[i])), nil
		}
	case key.Matches(msg, keys.Retry):
		return p.fetch(p.ctrl.Retry()), nil
	}
	return nil, nil
}

func (p *listPage[T]) move(req listview.Request, ok bool) tea.Cmd {
	if ok {
		p.cursor = 0
	}
	return p.fetch(req, ok)
}

func (p *listPage[T]) clampCursor() {
	n := len(p.ctrl.State().Items)
	if p.cursor >= n {
		p.cursor = max(0, n-1)
	}
}

func (p *listPage[T]) View(width, height int) string {
	st := p.ctrl.State()

	header := p.env.renderHeader(width, p.spec.id)
	searchLine := p.renderSearchLine(st)
	pager := renderPager(st.Window, st.Shortcuts, st.Page, st.TotalPages, st.HasPrev, st.HasNext)
	summary := p.renderSummary(st)
	helpLine := p.help.View(listHelp{p.env.keys})

	fixed := lipgloss.Height(header) + lipgloss.Height(searchLine) + lipgloss.Height(pager) +
		lipgloss.Height(summary) + lipgloss.Height(helpLine) + 4
	bodyHeight := max(height-fixed, 3)

	var body string
	switch {
	case st.Status == listview.StatusError:
		body = renderFetchError(st.Err, p.spec.noun)
	case st.Status == listview.StatusIdle || (st.Status == listview.StatusLoading && !st.Stale):
		body = renderLoadingPlaceholder(width, bodyHeight, p.spec.noun)
	case len(st.Items) == 0:
		body = mutedStyle.Render(p.emptyText())
	default:
		body = p.renderRows(st.Items, width)
		if p.spec.aside != nil {
			body = lipgloss.JoinVertical(lipgloss.Left, body, "", p.spec.aside(st.Items, width))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		searchLine,
		"",
		body,
		"",
		pager,
		summary,
		helpLine,
	)
}

func (p *listPage[T]) renderSearchLine(st listview.RenderState[T]) string {
	line := titleStyle.Render(p.spec.title) + "  " + p.search.View()
	if st.Status == listview.StatusLoading && st.Stale {
		line += "  " + warnStyle.Render(spinnerFrame()+" updating")
	}
	return line
}

func (p *listPage[T]) renderSummary(st listview.RenderState[T]) string {
	if st.Status != listview.StatusReady && !st.Stale {
		return ""
	}
	s := fmt.Sprintf("page %d of %d • %d %s", st.Page, st.TotalPages, st.TotalItems, p.spec.noun)
	if q := p.ctrl.Search(); strings.TrimSpace(q) != "" {
		s += fmt.Sprintf(" matching %q", strings.TrimSpace(q))
	}
	return mutedStyle.Render(s)
}

func (p *listPage[T]) emptyText() string {
	if q := strings.TrimSpace(p.ctrl.Search()); q != "" {
		return fmt.Sprintf("No %s match %q.", p.spec.noun, q)
	}
	return fmt.Sprintf("No %s found.", p.spec.noun)
}

func (p *listPage[T]) renderRows(items []T, width int) string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		line := p.spec.row(it, width-4)
		if i == p.cursor {
			lines = append(lines, selectedRowStyle.Render("▸ "+line))
			continue
		}
		lines = append(lines, "  "+line)
	}
	return strings.Join(lines, "\n")
}

// renderPager draws the pagination bar: prev, an optional "1 …" shortcut,
// the window, an optional "… N" shortcut and next.
func renderPager(window []int, sc paging.Shortcuts, current, total int, hasPrev, hasNext bool) string {
	if len(window) == 0 {
		return ""
	}
	var parts []string
	if hasPrev {
		parts = append(parts, pageButtonStyle.Render("‹ Prev"))
	} else {
		parts = append(parts, disabledStyle.Padding(0, 1).Render("‹ Prev"))
	}
	if sc.First {
		parts = append(parts, pageButtonStyle.Render("1"), mutedStyle.Render("…"))
	}
	for _, n := range window {
		if n == current {
			parts = append(parts, currentPageStyle.Render(fmt.Sprint(n)))
			continue
		}
		parts = append(parts, pageButtonStyle.Render(fmt.Sprint(n)))
	}
	if sc.Last {
		parts = append(parts, mutedStyle.Render("…"), pageButtonStyle.Render(fmt.Sprint(total)))
	}
	if hasNext {
		parts = append(parts, pageButtonStyle.Render("Next ›"))
	} else {
		parts = append(parts, disabledStyle.Padding(0, 1).Render("Next ›"))
	}
	return strings.Join(parts, "")
}

// renderFetchError explains a failed fetch inline.
func renderFetchError(err error, what string) string {
	var msg string
	switch {
	case model.IsNetworkFailure(err):
		msg = "Could not reach the server while loading " + what + "."
	case model.IsInvalidShape(err):
		msg = "The server sent an unexpected response for " + what + "."
	case model.IsNotFound(err):
		msg = "Not found."
	case errors.Is(err, paging.ErrInvalidInput):
		msg = "Invalid pagination state."
	default:
		msg = "Failed to load " + what + "."
	}
	detail := ""
	if err != nil {
		detail = "\n" + mutedStyle.Render(err.Error())
	}
	return errorStyle.Render(msg) + detail + "\n" + mutedStyle.Render("press r to retry")
}
