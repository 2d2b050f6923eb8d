package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/orbit/internal/model"
)

func newRocketsPage(e *env) *listPage[model.Rocket] {
	return newListPage(e, listSpec[model.Rocket]{
		id:       PageRockets,
		title:    "SpaceX Rockets",
		noun:     "rockets",
		other:    PageLaunches,
		detail:   PageRocket,
		pageSize: model.RocketPageSize,
		source:   e.catalog.Rockets(),
		row:      rocketRow,
		aside:    renderSuccessChart,
	})
}

func rocketRow(r model.Rocket, width int) string {
	status := lipgloss.NewStyle().Foreground(ColorGreen).Render("active  ")
	if !r.Active {
		status = mutedStyle.Render("retired ")
	}
	nameWidth := max(width-44, 12)
	return fmt.Sprintf("%s %s %3d%%  %s",
		lipgloss.NewStyle().Width(nameWidth).MaxWidth(nameWidth).Render(r.Name),
		status,
		r.SuccessRatePct,
		mutedStyle.Render(formatCost(r.CostPerLaunch)),
	)
}

// formatCost renders a launch cost in millions of dollars.
func formatCost(usd int64) string {
	if usd <= 0 {
		return "cost n/a"
	}
	return fmt.Sprintf("$%.1fM / launch", float64(usd)/1e6)
}

// renderSuccessChart draws the success rate of the rockets on the current
// page as a bar chart with a legend.
func renderSuccessChart(rockets []model.Rocket, width int) string {
	if len(rockets) == 0 {
		return ""
	}

	const barWidth = 2
	chartHeight := 6
	chartWidth := len(rockets) * (barWidth + 1)

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)

	legend := make([]string, 0, len(rockets))
	for i, r := range rockets {
		c := rateColor(r.SuccessRatePct)
		style := lipgloss.NewStyle().Foreground(c).Background(c)
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: r.Name, Value: float64(r.SuccessRatePct), Style: style},
			},
		})
		mark := lipgloss.NewStyle().Foreground(c).Render(fmt.Sprintf("%c", 'A'+i))
		legend = append(legend, fmt.Sprintf("%s %-16s %3d%%", mark, truncate(r.Name, 16), r.SuccessRatePct))
	}

	bc.Draw()

	var marks strings.Builder
	for i := range rockets {
		marks.WriteString(fmt.Sprintf("%-*c", barWidth+1, 'A'+i))
	}
	chart := lipgloss.JoinVertical(lipgloss.Left, bc.View(), mutedStyle.Render(marks.String()))

	title := titleStyle.Render("Success rate")
	body := lipgloss.JoinHorizontal(lipgloss.Top, chart, "   ", strings.Join(legend, "\n"))
	out := lipgloss.JoinVertical(lipgloss.Left, title, body)
	if lipgloss.Width(out) > width && width > 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(legend, "\n"))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
