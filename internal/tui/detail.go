package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/orbit/internal/model"
)

// Each detail fetch is tagged with the page generation it was issued for.
// Results from an earlier visit are dropped.

type launchLoadedMsg struct {
	gen    int
	launch model.Launch
	err    error
}

func (launchLoadedMsg) target() string { return PageLaunch }

type launchRocketMsg struct {
	gen    int
	rocket model.Rocket
	err    error
}

func (launchRocketMsg) target() string { return PageLaunch }

type rocketLoadedMsg struct {
	gen    int
	rocket model.Rocket
	err    error
}

func (rocketLoadedMsg) target() string { return PageRocket }

type carouselTickMsg struct{ gen int }

func (carouselTickMsg) target() string { return PageRocket }

func backTo(params detailParams, fallback string) string {
	if params.Back != "" {
		return params.Back
	}
	return fallback
}

// launchDetailPage shows one launch, then fetches the rocket it flew on.
type launchDetailPage struct {
	env    *env
	params detailParams
	gen    int
	help   help.Model

	loading bool
	launch  *model.Launch
	err     error

	rocketLoading bool
	rocket        *model.Rocket
	rocketErr     error
}

func newLaunchDetailPage(e *env) *launchDetailPage {
	return &launchDetailPage{env: e, help: help.New()}
}

func (p *launchDetailPage) ID() string { return PageLaunch }

func (p *launchDetailPage) Enter(params interface{}) {
	if dp, ok := params.(detailParams); ok {
		p.params = dp
	}
	p.gen++
	p.launch, p.err = nil, nil
	p.rocket, p.rocketErr = nil, nil
	p.loading, p.rocketLoading = false, false
}

func (p *launchDetailPage) Init() tea.Cmd { return p.fetchLaunch() }

func (p *launchDetailPage) Loading() bool { return p.loading || p.rocketLoading }

func (p *launchDetailPage) fetchLaunch() tea.Cmd {
	p.loading = true
	p.err = nil
	e, id, gen := p.env, p.params.ID, p.gen
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		l, err := e.catalog.Launch(ctx, id)
		return launchLoadedMsg{gen: gen, launch: l, err: err}
	}
}

func (p *launchDetailPage) fetchRocket(id string) tea.Cmd {
	p.rocketLoading = true
	p.rocketErr = nil
	e, gen := p.env, p.gen
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		r, err := e.catalog.Rocket(ctx, id)
		return launchRocketMsg{gen: gen, rocket: r, err: err}
	}
}

func (p *launchDetailPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case launchLoadedMsg:
		if msg.gen != p.gen {
			return nil, nil
		}
		p.loading = false
		if msg.err != nil {
			p.err = msg.err
			return nil, nil
		}
		l := msg.launch
		p.launch = &l
		if l.Rocket == "" {
			return nil, nil
		}
		return p.fetchRocket(l.Rocket), nil

	case launchRocketMsg:
		if msg.gen != p.gen {
			return nil, nil
		}
		p.rocketLoading = false
		if msg.err != nil {
			p.rocketErr = msg.err
			return nil, nil
		}
		r := msg.rocket
		p.rocket = &r
		return nil, nil

	case tea.KeyMsg:
		keys := p.env.keys
		switch {
		case key.Matches(msg, keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, keys.Back):
			return nil, &PageNav{PageID: backTo(p.params, PageLaunches)}
		case key.Matches(msg, keys.Logout):
			return p.env.logout()
		case key.Matches(msg, keys.Retry):
			switch {
			case p.err != nil && !p.loading:
				return p.fetchLaunch(), nil
			case p.rocketErr != nil && !p.rocketLoading && p.launch != nil:
				return p.fetchRocket(p.launch.Rocket), nil
			}
		case key.Matches(msg, keys.Rocket), key.Matches(msg, keys.Enter):
			if p.rocket != nil {
				return nil, &PageNav{PageID: PageRocket, Params: detailParams{ID: p.rocket.ID, Back: PageLaunch}}
			}
		}
	}
	return nil, nil
}

func (p *launchDetailPage) View(width, height int) string {
	header := p.env.renderHeader(width, PageLaunches)
	helpLine := p.help.View(detailHelp{k: p.env.keys, rocket: p.rocket != nil})
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(helpLine)-2, 3)

	var body string
	switch {
	case p.loading:
		body = renderLoadingPlaceholder(width, bodyHeight, "launch")
	case model.IsNotFound(p.err):
		body = errorStyle.Render("Launch not found")
	case p.err != nil:
		body = renderFetchError(p.err, "the launch")
	case p.launch != nil:
		body = p.renderLaunch(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", helpLine)
}

func (p *launchDetailPage) renderLaunch(width int) string {
	l := p.launch
	var b strings.Builder

	b.WriteString(mutedStyle.Render("Launches / ") + l.Name + "\n\n")
	b.WriteString(titleStyle.Render(l.Name) + "\n")

	date := "date to be announced"
	if !l.DateUTC.IsZero() {
		date = l.DateUTC.UTC().Format("January 2, 2006 15:04 MST")
	}
	b.WriteString(field("Date", date))
	b.WriteString(field("Flight", fmt.Sprintf("#%d", l.FlightNumber)))
	b.WriteString(field("Outcome", outcomeStyle(l.Outcome()).Render(l.Outcome())))

	b.WriteString("\n" + titleStyle.Render("Launch Details") + "\n")
	if l.Details != "" {
		b.WriteString(lipgloss.NewStyle().Width(min(max(width-4, 20), 100)).Render(l.Details) + "\n")
	} else {
		b.WriteString(mutedStyle.Italic(true).Render("No details available.") + "\n")
	}

	links := []struct{ label, url string }{
		{"Webcast", l.Links.Webcast},
		{"Article", l.Links.Article},
		{"Wikipedia", l.Links.Wikipedia},
		{"Patch", l.Links.Patch.Small},
	}
	var wrote bool
	for _, ln := range links {
		if ln.url == "" {
			continue
		}
		if !wrote {
			b.WriteString("\n" + titleStyle.Render("Links") + "\n")
			wrote = true
		}
		b.WriteString(field(ln.label, ln.url))
	}

	b.WriteString("\n" + titleStyle.Render("Rocket") + "\n")
	switch {
	case l.Rocket == "":
		b.WriteString(mutedStyle.Render("No rocket recorded.") + "\n")
	case p.rocketLoading:
		b.WriteString(mutedStyle.Render(spinnerFrame()+" Loading rocket...") + "\n")
	case p.rocketErr != nil:
		b.WriteString(renderFetchError(p.rocketErr, "the rocket") + "\n")
	case p.rocket != nil:
		r := p.rocket
		b.WriteString(field("Name", r.Name))
		b.WriteString(field("Type", r.Type))
		b.WriteString(field("Success rate", fmt.Sprintf("%d%%", r.SuccessRatePct)))
		if r.Description != "" {
			b.WriteString(lipgloss.NewStyle().Width(min(max(width-4, 20), 100)).Render(r.Description) + "\n")
		}
		b.WriteString(mutedStyle.Render("press o to open the rocket") + "\n")
	}
	return b.String()
}

func field(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

// rocketDetailPage shows one rocket with an auto-advancing image carousel.
type rocketDetailPage struct {
	env    *env
	params detailParams
	gen    int
	help   help.Model

	loading bool
	rocket  *model.Rocket
	err     error

	image int
	// tick invalidates outstanding carousel ticks when bumped, so manual
	// navigation restarts the interval and a hidden page stops advancing.
	tick int
}

func newRocketDetailPage(e *env) *rocketDetailPage {
	return &rocketDetailPage{env: e, help: help.New()}
}

func (p *rocketDetailPage) ID() string { return PageRocket }

func (p *rocketDetailPage) Enter(params interface{}) {
	if dp, ok := params.(detailParams); ok {
		p.params = dp
	}
	p.gen++
	p.tick++
	p.rocket, p.err = nil, nil
	p.loading = false
	p.image = 0
}

func (p *rocketDetailPage) Leave() { p.tick++ }

func (p *rocketDetailPage) Init() tea.Cmd { return p.fetch() }

func (p *rocketDetailPage) Loading() bool { return p.loading }

func (p *rocketDetailPage) fetch() tea.Cmd {
	p.loading = true
	p.err = nil
	e, id, gen := p.env, p.params.ID, p.gen
	return func() tea.Msg {
		ctx, cancel := e.ctx()
		defer cancel()
		r, err := e.catalog.Rocket(ctx, id)
		return rocketLoadedMsg{gen: gen, rocket: r, err: err}
	}
}

func (p *rocketDetailPage) images() []string {
	if p.rocket == nil {
		return nil
	}
	return p.rocket.FlickrImages
}

// scheduleTick starts a fresh carousel interval.
func (p *rocketDetailPage) scheduleTick() tea.Cmd {
	p.tick++
	if len(p.images()) < 2 {
		return nil
	}
	tick := p.tick
	return tea.Tick(p.env.carousel, func(_ time.Time) tea.Msg {
		return carouselTickMsg{gen: tick}
	})
}

func (p *rocketDetailPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case rocketLoadedMsg:
		if msg.gen != p.gen {
			return nil, nil
		}
		p.loading = false
		if msg.err != nil {
			p.err = msg.err
			return nil, nil
		}
		r := msg.rocket
		p.rocket = &r
		p.image = 0
		return p.scheduleTick(), nil

	case carouselTickMsg:
		if msg.gen != p.tick {
			return nil, nil
		}
		if n := len(p.images()); n > 1 {
			p.image = (p.image + 1) % n
		}
		return p.scheduleTick(), nil

	case tea.KeyMsg:
		keys := p.env.keys
		switch {
		case key.Matches(msg, keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, keys.Back):
			return nil, &PageNav{PageID: backTo(p.params, PageRockets)}
		case key.Matches(msg, keys.Logout):
			return p.env.logout()
		case key.Matches(msg, keys.Retry):
			if p.err != nil && !p.loading {
				return p.fetch(), nil
			}
		case key.Matches(msg, keys.PrevImage):
			if n := len(p.images()); n > 1 {
				p.image = (p.image - 1 + n) % n
				return p.scheduleTick(), nil
			}
		case key.Matches(msg, keys.NextImage):
			if n := len(p.images()); n > 1 {
				p.image = (p.image + 1) % n
				return p.scheduleTick(), nil
			}
		}
	}
	return nil, nil
}

func (p *rocketDetailPage) View(width, height int) string {
	header := p.env.renderHeader(width, PageRockets)
	helpLine := p.help.View(detailHelp{k: p.env.keys, carousel: len(p.images()) > 1})
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(helpLine)-2, 3)

	var body string
	switch {
	case p.loading:
		body = renderLoadingPlaceholder(width, bodyHeight, "rocket")
	case model.IsNotFound(p.err):
		body = errorStyle.Render("Rocket not found")
	case p.err != nil:
		body = renderFetchError(p.err, "the rocket")
	case p.rocket != nil:
		body = p.renderRocket(width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", helpLine)
}

func (p *rocketDetailPage) renderRocket(width int) string {
	r := p.rocket
	var b strings.Builder

	b.WriteString(mutedStyle.Render("Rockets / ") + r.Name + "\n\n")
	status := lipgloss.NewStyle().Foreground(ColorGreen).Bold(true).Render("Active")
	if !r.Active {
		status = mutedStyle.Render("Retired")
	}
	b.WriteString(titleStyle.Render(r.Name) + "  " + status + "\n")

	b.WriteString(field("Type", r.Type))
	b.WriteString(field("First flight", r.FirstFlight))
	b.WriteString(field("Company", r.Company))
	b.WriteString(field("Country", r.Country))
	b.WriteString(field("Stages", fmt.Sprint(r.Stages)))
	b.WriteString(field("Boosters", fmt.Sprint(r.Boosters)))
	b.WriteString(field("Height", formatDimension(r.Height)))
	b.WriteString(field("Diameter", formatDimension(r.Diameter)))
	b.WriteString(field("Mass", fmt.Sprintf("%d kg / %d lb", r.Mass.Kg, r.Mass.Lb)))
	b.WriteString(field("Cost", formatCost(r.CostPerLaunch)))
	b.WriteString(field("Success rate", lipgloss.NewStyle().Foreground(rateColor(r.SuccessRatePct)).Render(fmt.Sprintf("%d%%", r.SuccessRatePct))))
	if r.Wikipedia != "" {
		b.WriteString(field("Wikipedia", r.Wikipedia))
	}

	if r.Description != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(min(max(width-4, 20), 100)).Render(r.Description) + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Images") + "\n")
	b.WriteString(p.renderCarousel())
	return b.String()
}

// renderCarousel shows the current image link with position dots.
func (p *rocketDetailPage) renderCarousel() string {
	imgs := p.images()
	if len(imgs) == 0 {
		return mutedStyle.Render("No images available.") + "\n"
	}
	var dots strings.Builder
	for i := range imgs {
		if i == p.image {
			dots.WriteString(lipgloss.NewStyle().Foreground(ColorBlue).Render("●"))
		} else {
			dots.WriteString(mutedStyle.Render("○"))
		}
		dots.WriteString(" ")
	}
	counter := mutedStyle.Render(fmt.Sprintf("%d/%d", p.image+1, len(imgs)))
	return dots.String() + counter + "\n" + imgs[p.image] + "\n"
}

func formatDimension(d model.Dimension) string {
	var parts []string
	if d.Meters != nil {
		parts = append(parts, fmt.Sprintf("%.1f m", *d.Meters))
	}
	if d.Feet != nil {
		parts = append(parts, fmt.Sprintf("%.1f ft", *d.Feet))
	}
	if len(parts) == 0 {
		return "n/a"
	}
	return strings.Join(parts, " / ")
}
