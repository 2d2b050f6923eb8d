package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/orbit/internal/model"
)

func newLaunchesPage(e *env) *listPage[model.Launch] {
	return newListPage(e, listSpec[model.Launch]{
		id:       PageLaunches,
		title:    "SpaceX Launches",
		noun:     "launches",
		other:    PageRockets,
		detail:   PageLaunch,
		pageSize: model.LaunchPageSize,
		source:   e.catalog.Launches(),
		row:      launchRow,
	})
}

// launchRow renders one launch: flight number, name, date and outcome.
func launchRow(l model.Launch, width int) string {
	date := "TBD"
	if !l.DateUTC.IsZero() {
		date = l.DateUTC.UTC().Format("2006-01-02")
	}
	outcome := l.Outcome()
	nameWidth := max(width-32, 12)

	return fmt.Sprintf("#%-4d %s %s  %s",
		l.FlightNumber,
		lipgloss.NewStyle().Width(nameWidth).MaxWidth(nameWidth).Render(l.Name),
		mutedStyle.Render(date),
		outcomeStyle(outcome).Render(outcome),
	)
}
