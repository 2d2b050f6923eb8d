package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/orbit/internal/authclient"
	"github.com/tinytelemetry/orbit/internal/session"
)

type loginResultMsg struct {
	rec session.Record
	err error
}

func (loginResultMsg) target() string { return PageLogin }

type loginPage struct {
	env *env

	username textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	errMsg     string
}

func newLoginPage(e *env) *loginPage {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &loginPage{env: e, username: username, password: password}
}

func (p *loginPage) ID() string { return PageLogin }

func (p *loginPage) Enter(_ interface{}) {
	p.password.SetValue("")
	p.submitting = false
	p.setFocus(0)
}

func (p *loginPage) Init() tea.Cmd { return textinput.Blink }

func (p *loginPage) Loading() bool { return p.submitting }

func (p *loginPage) setFocus(i int) {
	p.focus = i
	if i == 0 {
		p.username.Focus()
		p.password.Blur()
		return
	}
	p.username.Blur()
	p.password.Focus()
}

func (p *loginPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case loginResultMsg:
		p.submitting = false
		if msg.err != nil {
			p.errMsg = loginErrorText(msg.err)
			p.env.log.Warn().Err(msg.err).Msg("login failed")
			return nil, nil
		}
		if err := p.env.gate.Login(msg.rec); err != nil {
			p.errMsg = err.Error()
			return nil, nil
		}
		p.errMsg = ""
		p.password.SetValue("")
		p.env.log.Info().Str("username", msg.rec.Username).Msg("logged in")
		return nil, &PageNav{PageID: PageLaunches}

	case tea.KeyMsg:
		if p.submitting {
			return nil, nil
		}
		keys := p.env.keys
		switch {
		case key.Matches(msg, keys.NextField):
			p.setFocus((p.focus + 1) % 2)
			return nil, nil
		case key.Matches(msg, keys.PrevField):
			p.setFocus((p.focus + 1) % 2)
			return nil, nil
		case key.Matches(msg, keys.Submit):
			if p.focus == 0 {
				p.setFocus(1)
				return nil, nil
			}
			return p.submit(), nil
		case msg.String() == "esc":
			return tea.Quit, nil
		}
	}

	var cmd tea.Cmd
	if p.focus == 0 {
		p.username, cmd = p.username.Update(msg)
	} else {
		p.password, cmd = p.password.Update(msg)
	}
	return cmd, nil
}

func (p *loginPage) submit() tea.Cmd {
	username := strings.TrimSpace(p.username.Value())
	password := p.password.Value()
	if username == "" || password == "" {
		p.errMsg = "Username and password are required"
		return nil
	}
	p.errMsg = ""
	p.submitting = true
	e := p.env
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		rec, err := e.auth.Login(ctx, username, password)
		return loginResultMsg{rec: rec, err: err}
	}
}

func loginErrorText(err error) string {
	var apiErr *authclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Login failed: " + err.Error()
}

func (p *loginPage) View(width, height int) string {
	var b strings.Builder
	b.WriteString(renderBranding())
	b.WriteString(titleStyle.Render("  Sign in"))
	b.WriteString("\n\n")
	b.WriteString(p.username.View())
	b.WriteString("\n")
	b.WriteString(p.password.View())
	b.WriteString("\n\n")

	switch {
	case p.submitting:
		b.WriteString(mutedStyle.Render(spinnerFrame() + " Signing in..."))
	case p.errMsg != "":
		b.WriteString(errorStyle.Render(p.errMsg))
	default:
		b.WriteString(mutedStyle.Render("tab: switch field • enter: sign in • esc: quit"))
	}

	form := boxStyle.Width(48).Render(b.String())
	if width <= 0 || height <= 0 {
		return form
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}
