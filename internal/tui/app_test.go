package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tinytelemetry/orbit/internal/authclient"
	"github.com/tinytelemetry/orbit/internal/model"
	"github.com/tinytelemetry/orbit/internal/paging"
	"github.com/tinytelemetry/orbit/internal/session"
)

// fakeCatalog serves launches and rockets from memory in slice order.
type fakeCatalog struct {
	mu       sync.Mutex
	launches []model.Launch
	rockets  []model.Rocket
	calls    int
	fail     error
}

func (c *fakeCatalog) Launches() model.PagedSource[model.Launch] {
	return model.PagedSourceFunc[model.Launch](func(_ context.Context, f model.Filter, size, page int) (model.Page[model.Launch], error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.calls++
		if c.fail != nil {
			return model.Page[model.Launch]{}, c.fail
		}
		return pageOf(c.launches, f, size, page)
	})
}

func (c *fakeCatalog) Rockets() model.PagedSource[model.Rocket] {
	return model.PagedSourceFunc[model.Rocket](func(_ context.Context, f model.Filter, size, page int) (model.Page[model.Rocket], error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.calls++
		return pageOf(c.rockets, f, size, page)
	})
}

func (c *fakeCatalog) Launch(_ context.Context, id string) (model.Launch, error) {
	for _, l := range c.launches {
		if l.ID == id {
			return l, nil
		}
	}
	return model.Launch{}, model.NewFetchError(model.NotFound, "launches", nil)
}

func (c *fakeCatalog) Rocket(_ context.Context, id string) (model.Rocket, error) {
	for _, r := range c.rockets {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Rocket{}, model.NewFetchError(model.NotFound, "rockets", nil)
}

func (c *fakeCatalog) fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeCatalog) setFail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

func pageOf[T model.Item](items []T, f model.Filter, size, page int) (model.Page[T], error) {
	var matched []T
	for _, it := range items {
		ok, err := f.Matches(map[string]string{"name": it.ItemName()})
		if err != nil {
			return model.Page[T]{}, err
		}
		if ok {
			matched = append(matched, it)
		}
	}
	total := model.TotalPagesFor(len(matched), size)
	lo := min((page-1)*size, len(matched))
	hi := min(lo+size, len(matched))
	return model.NewPage(matched[lo:hi], page, total, len(matched), size), nil
}

func newFakeCatalog() *fakeCatalog {
	c := &fakeCatalog{
		rockets: []model.Rocket{
			{ID: "r1", Name: "Falcon 1", SuccessRatePct: 40},
			{ID: "r9", Name: "Falcon 9", Active: true, SuccessRatePct: 98,
				FlickrImages: []string{"https://img/1.jpg", "https://img/2.jpg", "https://img/3.jpg"}},
		},
	}
	for i := 0; i < 15; i++ {
		c.launches = append(c.launches, model.Launch{
			ID: fmt.Sprintf("f%02d", i), Name: fmt.Sprintf("Falcon mission %d", i), FlightNumber: i + 1, Rocket: "r9",
		})
	}
	for i := 0; i < 22; i++ {
		c.launches = append(c.launches, model.Launch{
			ID: fmt.Sprintf("o%02d", i), Name: fmt.Sprintf("Other mission %d", i), FlightNumber: 100 + i, Rocket: "r1",
		})
	}
	return c
}

type fakeAuth struct {
	mu      sync.Mutex
	err     error
	logouts []string
}

func (a *fakeAuth) Login(_ context.Context, username, password string) (session.Record, error) {
	if a.err != nil {
		return session.Record{}, a.err
	}
	return session.Record{Token: "tok-" + username, Username: username, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (a *fakeAuth) Logout(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logouts = append(a.logouts, token)
	return nil
}

func (a *fakeAuth) loggedOut() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.logouts...)
}

type harness struct {
	t       *testing.T
	app     *App
	catalog *fakeCatalog
	auth    *fakeAuth
	gate    *session.Gate
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	gate, err := session.Open(&session.MemoryStore{})
	if err != nil {
		t.Fatalf("open gate: %v", err)
	}
	if loggedIn {
		if err := gate.Login(session.Record{Token: "tok", Username: "ada", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	h := &harness{t: t, catalog: newFakeCatalog(), auth: &fakeAuth{}, gate: gate}
	h.app = New(Options{
		Catalog:          h.catalog,
		Gate:             gate,
		Auth:             h.auth,
		Logger:           zerolog.Nop(),
		CarouselInterval: time.Hour,
	})
	h.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.drain(h.app.Init())
	return h
}

// drain runs commands and feeds their messages back into the app. Commands
// that do not finish promptly (ticks, cursor blink) are dropped.
func (h *harness) drain(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 500; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok || msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		_, next := h.app.Update(msg)
		queue = append(queue, next)
	}
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case m := <-ch:
		return m, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

func (h *harness) send(msgs ...tea.Msg) {
	h.t.Helper()
	for _, m := range msgs {
		_, cmd := h.app.Update(m)
		h.drain(cmd)
	}
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	right = tea.KeyMsg{Type: tea.KeyRight}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func (h *harness) launches() *listPage[model.Launch] {
	return h.app.pages[PageLaunches].(*listPage[model.Launch])
}

func TestApp_RedirectsToLoginWithoutSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	if got := h.app.Active(); got != PageLogin {
		t.Fatalf("active page = %q, want %q", got, PageLogin)
	}
	if got := h.catalog.fetches(); got != 0 {
		t.Fatalf("fetches before login = %d, want 0", got)
	}
	if v := h.app.View(); !strings.Contains(v, "Sign in") {
		t.Fatalf("login view missing title:\n%s", v)
	}
}

func TestApp_StartsOnLaunchesWithSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	if got := h.app.Active(); got != PageLaunches {
		t.Fatalf("active page = %q, want %q", got, PageLaunches)
	}
	st := h.launches().ctrl.State()
	if len(st.Items) != model.LaunchPageSize {
		t.Fatalf("items = %d, want %d", len(st.Items), model.LaunchPageSize)
	}
	if st.TotalPages != 4 {
		t.Fatalf("total pages = %d, want 4", st.TotalPages)
	}
	if v := h.app.View(); !strings.Contains(v, "Falcon mission 0") {
		t.Fatalf("view missing first launch:\n%s", v)
	}
}

func TestLogin_SuccessOpensLaunches(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.typeText("ada")
	h.send(enter)
	h.typeText("secret")
	h.send(enter)

	if got := h.app.Active(); got != PageLaunches {
		t.Fatalf("active page = %q, want %q", got, PageLaunches)
	}
	tok, err := h.gate.Token()
	if err != nil || tok != "tok-ada" {
		t.Fatalf("token = %q, %v; want tok-ada", tok, err)
	}
	if got := len(h.launches().ctrl.State().Items); got != model.LaunchPageSize {
		t.Fatalf("items after login = %d", got)
	}
}

func TestLogin_RequiresBothFields(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.typeText("ada")
	h.send(tab, enter)

	if got := h.app.Active(); got != PageLogin {
		t.Fatalf("active page = %q, want login", got)
	}
	if v := h.app.View(); !strings.Contains(v, "Username and password are required") {
		t.Fatalf("view missing validation message:\n%s", v)
	}
}

func TestLogin_ShowsServerError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	h.auth.err = &authclient.APIError{Status: 401, Message: "Invalid credentials"}
	h.typeText("ada")
	h.send(enter)
	h.typeText("wrong")
	h.send(enter)

	if got := h.app.Active(); got != PageLogin {
		t.Fatalf("active page = %q, want login", got)
	}
	if h.gate.Present() {
		t.Fatal("gate holds a token after a failed login")
	}
	if v := h.app.View(); !strings.Contains(v, "Invalid credentials") {
		t.Fatalf("view missing error:\n%s", v)
	}
}

func TestLaunches_SearchCommitsOnEnter(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	before := h.catalog.fetches()

	h.send(runes("/"))
	h.typeText("falcon")
	if got := h.catalog.fetches(); got != before {
		t.Fatalf("fetches while typing = %d, want %d", got, before)
	}

	h.send(enter)
	st := h.launches().ctrl.State()
	if st.TotalItems != 15 || st.TotalPages != 2 {
		t.Fatalf("filtered = %d items / %d pages, want 15 / 2", st.TotalItems, st.TotalPages)
	}
	if v := h.app.View(); !strings.Contains(v, `matching "falcon"`) {
		t.Fatalf("view missing search summary:\n%s", v)
	}

	h.send(right)
	if got := len(h.launches().ctrl.State().Items); got != 3 {
		t.Fatalf("page 2 items = %d, want 3", got)
	}

	// esc clears the search and starts over on page 1.
	h.send(esc)
	st = h.launches().ctrl.State()
	if st.Page != 1 || st.TotalItems != 37 {
		t.Fatalf("after clear: page %d, %d items", st.Page, st.TotalItems)
	}
}

func TestLaunches_SearchEscapeWhileTyping(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.send(runes("/"))
	h.typeText("falcon")
	h.send(esc)

	p := h.launches()
	if p.searching {
		t.Fatal("still in search mode after esc")
	}
	if p.search.Value() != "" || p.ctrl.Search() != "" {
		t.Fatalf("search not cleared: input %q, committed %q", p.search.Value(), p.ctrl.Search())
	}
}

func TestLaunches_PaginationKeys(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.send(runes("G"))
	if got := h.launches().ctrl.State().Page; got != 4 {
		t.Fatalf("page after G = %d, want 4", got)
	}
	h.send(left)
	if got := h.launches().ctrl.State().Page; got != 3 {
		t.Fatalf("page after left = %d, want 3", got)
	}
	h.send(runes("g"))
	if got := h.launches().ctrl.State().Page; got != 1 {
		t.Fatalf("page after g = %d, want 1", got)
	}

	before := h.catalog.fetches()
	h.send(left)
	if got := h.catalog.fetches(); got != before {
		t.Fatal("left on page 1 issued a fetch")
	}
}

func TestLaunches_DigitPicksWindowPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	if w := h.launches().ctrl.State().Window; len(w) != 4 || w[0] != 1 {
		t.Fatalf("window = %v, want [1 2 3 4]", w)
	}

	before := h.catalog.fetches()
	h.send(runes("3"))
	if got := h.catalog.fetches(); got != before+1 {
		t.Fatalf("fetches after 3 = %d, want %d", got, before+1)
	}
	st := h.launches().ctrl.State()
	if st.Page != 3 || len(st.Items) != 12 {
		t.Fatalf("after 3: page %d with %d items, want page 3 with 12", st.Page, len(st.Items))
	}

	// Digits past the end of the window do nothing.
	before = h.catalog.fetches()
	h.send(runes("9"))
	if got := h.catalog.fetches(); got != before {
		t.Fatal("9 with a 4-button window issued a fetch")
	}

	h.send(runes("4"))
	if got := h.launches().ctrl.State().Page; got != 4 {
		t.Fatalf("page after 4 = %d, want 4", got)
	}
}

func TestLaunches_SearchResubmitRefetches(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.send(runes("/"))
	h.typeText("falcon")
	h.send(enter)

	before := h.catalog.fetches()
	h.send(runes("/"), enter)
	if got := h.catalog.fetches(); got != before+1 {
		t.Fatalf("fetches after resubmitting = %d, want %d", got, before+1)
	}
	if st := h.launches().ctrl.State(); st.TotalItems != 15 || st.Page != 1 {
		t.Fatalf("after resubmit: page %d, %d items", st.Page, st.TotalItems)
	}
}

func TestLaunches_ErrorAndRetry(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.catalog.setFail(model.NewFetchError(model.NetworkFailure, "launches", errors.New("connection refused")))
	h.send(right)

	if v := h.app.View(); !strings.Contains(v, "press r to retry") {
		t.Fatalf("view missing retry hint:\n%s", v)
	}

	h.catalog.setFail(nil)
	h.send(runes("r"))
	st := h.launches().ctrl.State()
	if st.Err != nil || st.Page != 2 {
		t.Fatalf("after retry: page %d, err %v", st.Page, st.Err)
	}
}

func TestApp_ResultDeliveredToHiddenPage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	p := h.launches()

	// Issue the next-page fetch but hold its result back.
	_, cmd := h.app.Update(right)
	var held tea.Msg
	for _, c := range flatten(cmd) {
		if m, ok := runCmd(c); ok {
			if _, isResult := m.(listResultMsg[model.Launch]); isResult {
				held = m
			}
		}
	}
	if held == nil {
		t.Fatal("no list result produced")
	}

	h.send(tab)
	if got := h.app.Active(); got != PageRockets {
		t.Fatalf("active page = %q, want rockets", got)
	}

	h.send(held)
	if got := p.ctrl.State().Page; got != 2 {
		t.Fatalf("hidden launches page = %d, want 2", got)
	}
	if got := p.ctrl.InFlight(); got != 0 {
		t.Fatalf("in flight = %d, want 0", got)
	}
}

func flatten(cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return nil
	}
	m, ok := runCmd(cmd)
	if !ok {
		return nil
	}
	if batch, ok := m.(tea.BatchMsg); ok {
		var out []tea.Cmd
		for _, c := range batch {
			out = append(out, flatten(c)...)
		}
		return out
	}
	return []tea.Cmd{func() tea.Msg { return m }}
}

func TestRockets_ShowsChart(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.send(tab)
	v := h.app.View()
	for _, want := range []string{"SpaceX Rockets", "Success rate", "Falcon 9", "98%"} {
		if !strings.Contains(v, want) {
			t.Fatalf("rockets view missing %q:\n%s", want, v)
		}
	}
}

func TestLaunchDetail_LoadsRocket(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.send(enter)

	if got := h.app.Active(); got != PageLaunch {
		t.Fatalf("active page = %q, want launch", got)
	}
	p := h.app.pages[PageLaunch].(*launchDetailPage)
	if p.launch == nil || p.launch.ID != "f00" {
		t.Fatalf("launch = %+v", p.launch)
	}
	if p.rocket == nil || p.rocket.ID != "r9" {
		t.Fatalf("rocket = %+v", p.rocket)
	}
	v := h.app.View()
	if !strings.Contains(v, "No details available.") || !strings.Contains(v, "Falcon 9") {
		t.Fatalf("detail view:\n%s", v)
	}

	h.send(runes("o"))
	if got := h.app.Active(); got != PageRocket {
		t.Fatalf("active page = %q, want rocket", got)
	}
	h.send(esc)
	if got := h.app.Active(); got != PageLaunch {
		t.Fatalf("back from rocket = %q, want launch", got)
	}
	h.send(esc)
	if got := h.app.Active(); got != PageLaunches {
		t.Fatalf("back from launch = %q, want launches", got)
	}
	if got := h.launches().ctrl.State().Page; got != 1 {
		t.Fatalf("list state lost: page %d", got)
	}
}

func TestLaunchDetail_NotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.drain(h.app.switchTo(PageLaunch, detailParams{ID: "missing"}))
	if v := h.app.View(); !strings.Contains(v, "Launch not found") {
		t.Fatalf("view:\n%s", v)
	}
}

func TestRocketDetail_Carousel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.drain(h.app.switchTo(PageRocket, detailParams{ID: "r9", Back: PageRockets}))

	p := h.app.pages[PageRocket].(*rocketDetailPage)
	if p.rocket == nil {
		t.Fatal("rocket not loaded")
	}
	if p.image != 0 {
		t.Fatalf("image = %d, want 0", p.image)
	}

	h.send(carouselTickMsg{gen: p.tick})
	if p.image != 1 {
		t.Fatalf("image after tick = %d, want 1", p.image)
	}

	stale := p.tick
	h.send(right)
	if p.image != 2 {
		t.Fatalf("image after right = %d, want 2", p.image)
	}
	h.send(carouselTickMsg{gen: stale})
	if p.image != 2 {
		t.Fatalf("stale tick advanced the carousel to %d", p.image)
	}

	h.send(carouselTickMsg{gen: p.tick})
	if p.image != 0 {
		t.Fatalf("carousel did not wrap: %d", p.image)
	}
	h.send(left)
	if p.image != 2 {
		t.Fatalf("left did not wrap: %d", p.image)
	}

	live := p.tick
	h.send(esc)
	if got := h.app.Active(); got != PageRockets {
		t.Fatalf("back = %q, want rockets", got)
	}
	h.send(carouselTickMsg{gen: live})
	if p.image != 2 {
		t.Fatal("hidden carousel kept advancing")
	}
}

func TestLogout_ReturnsToLogin(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.send(runes("L"))

	if got := h.app.Active(); got != PageLogin {
		t.Fatalf("active page = %q, want login", got)
	}
	if h.gate.Present() {
		t.Fatal("gate still holds a token")
	}
	if got := h.auth.loggedOut(); len(got) != 1 || got[0] != "tok" {
		t.Fatalf("server logouts = %v", got)
	}

	h.send(tab)
	if got := h.app.Active(); got != PageLogin {
		t.Fatalf("tab on login navigated to %q", got)
	}
}

func TestRenderPager(t *testing.T) {
	t.Parallel()

	out := renderPager([]int{8, 9, 10, 11, 12}, paging.Shortcuts{First: true, Last: true}, 10, 19, true, true)
	for _, want := range []string{"‹ Prev", "1", "…", "10", "19", "Next ›"} {
		if !strings.Contains(out, want) {
			t.Fatalf("pager missing %q: %s", want, out)
		}
	}
	if got := renderPager(nil, paging.Shortcuts{}, 0, 0, false, false); got != "" {
		t.Fatalf("empty pager = %q", got)
	}
}
