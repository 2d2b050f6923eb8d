package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/tinytelemetry/orbit/internal/model"
	"github.com/tinytelemetry/orbit/internal/session"
)

// Authenticator talks to the authentication service.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (session.Record, error)
	Logout(ctx context.Context, token string) error
}

// Options wires the terminal client.
type Options struct {
	Catalog          model.Catalog
	Gate             *session.Gate
	Auth             Authenticator
	Logger           zerolog.Logger
	CarouselInterval time.Duration
	RequestTimeout   time.Duration
	// Source labels where the data comes from, shown in the header.
	Source string
}

// env is shared by every page.
type env struct {
	catalog  model.Catalog
	gate     *session.Gate
	auth     Authenticator
	log      zerolog.Logger
	keys     KeyMap
	carousel time.Duration
	timeout  time.Duration
	source   string
}

// New builds the client: login page, the two listings and the two detail
// pages. Every page but login requires a session token.
func New(opts Options) *App {
	if opts.CarouselInterval <= 0 {
		opts.CarouselInterval = model.DefaultCarouselInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = model.DefaultHTTPTimeout
	}
	e := &env{
		catalog:  opts.Catalog,
		gate:     opts.Gate,
		auth:     opts.Auth,
		log:      opts.Logger,
		keys:     DefaultKeyMap(),
		carousel: opts.CarouselInterval,
		timeout:  opts.RequestTimeout,
		source:   opts.Source,
	}

	app := NewApp(
		newLaunchesPage(e),
		newRocketsPage(e),
		newLaunchDetailPage(e),
		newRocketDetailPage(e),
		newLoginPage(e),
	)
	app.guard = func(target string) string {
		if target != PageLogin && !e.gate.Present() {
			return PageLogin
		}
		return target
	}
	return app
}

// ctx bounds a single background call.
func (e *env) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.timeout)
}

// logout drops the local session and tells the service, best effort.
func (e *env) logout() (tea.Cmd, *PageNav) {
	token, _ := e.gate.Token()
	if err := e.gate.Logout(); err != nil {
		e.log.Warn().Err(err).Msg("clear session")
	}
	nav := &PageNav{PageID: PageLogin}
	if token == "" || e.auth == nil {
		return nil, nav
	}
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		if err := e.auth.Logout(ctx, token); err != nil {
			e.log.Warn().Err(err).Msg("server logout")
		}
		return nil
	}, nav
}

// renderBranding renders "Orbit" with a green to cyan gradient.
func renderBranding() string {
	colors := []string{"#49E209", "#2BDB41", "#0DD47B", "#00D0A1", "#00CAC7"}
	var b strings.Builder
	for i, ch := range "Orbit" {
		b.WriteString(lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(lipgloss.Color(colors[i])).
			Bold(true).
			Render(string(ch)))
	}
	return b.String()
}

// renderHeader draws the top bar: branding, list tabs, user and source.
func (e *env) renderHeader(width int, active string) string {
	bar := lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorWhite)

	tab := func(id, label string) string {
		if id == active {
			return activeTabStyle.Render(label)
		}
		return inactiveTabStyle.Background(ColorNavy).Render(label)
	}
	left := bar.Render(" ") + renderBranding() + bar.Render("  ") +
		tab(PageLaunches, "Launches") + tab(PageRockets, "Rockets")

	var right string
	if rec, ok := e.gate.Current(); ok {
		right = rec.Username
	}
	if e.source != "" {
		if right != "" {
			right += " • "
		}
		right += e.source
	}
	right += " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + bar.Render(strings.Repeat(" ", gap)+right)
}
