package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("#1B2541")
	ColorWhite  = lipgloss.Color("#F5F7FA")
	ColorGray   = lipgloss.Color("#7A8194")
	ColorBlue   = lipgloss.Color("#5FA8FF")
	ColorCyan   = lipgloss.Color("#00CAC7")
	ColorGreen  = lipgloss.Color("#49E209")
	ColorYellow = lipgloss.Color("#FFD75F")
	ColorOrange = lipgloss.Color("#FF9F43")
	ColorRed    = lipgloss.Color("#FF5F5F")
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorGray)
	labelStyle = lipgloss.NewStyle().Foreground(ColorGray).Width(14)
	errorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorYellow).Italic(true)

	selectedRowStyle = lipgloss.NewStyle().Background(ColorNavy).Foreground(ColorWhite).Bold(true)

	activeTabStyle   = lipgloss.NewStyle().Background(ColorBlue).Foreground(ColorNavy).Bold(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(ColorGray).Padding(0, 1)

	currentPageStyle = lipgloss.NewStyle().Background(ColorBlue).Foreground(ColorNavy).Bold(true).Padding(0, 1)
	pageButtonStyle  = lipgloss.NewStyle().Foreground(ColorWhite).Padding(0, 1)
	disabledStyle    = lipgloss.NewStyle().Foreground(ColorGray).Faint(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)
)

// outcomeStyle colours a launch outcome label.
func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	case "failure":
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	case "upcoming":
		return lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	default:
		return mutedStyle
	}
}

// rateColor picks a bar colour for a success rate percentage.
func rateColor(pct int) lipgloss.Color {
	switch {
	case pct >= 90:
		return ColorGreen
	case pct >= 50:
		return ColorYellow
	case pct > 0:
		return ColorOrange
	default:
		return ColorGray
	}
}
