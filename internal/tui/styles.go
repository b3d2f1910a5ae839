package tui

import "github.com/charmbracelet/lipgloss"

const (
	accentColor   = "#7D56F4"
	selectedText  = "#FFFFFF"
	mutedColor    = "#888888"
	errorColor    = "#FF5F87"
	bannerBgColor = "#F2C94C"
)

type styles struct {
	title    lipgloss.Style
	selected lipgloss.Style
	item     lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
	status   lipgloss.Style
	banner   lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	dialog   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(selectedText)).
			Background(lipgloss.Color(accentColor)).
			Padding(0, 1),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(selectedText)).
			Background(lipgloss.Color(accentColor)).
			Bold(true),
		item:   lipgloss.NewStyle(),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(mutedColor)),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color(errorColor)).Bold(true),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color(accentColor)),
		banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(bannerBgColor)).
			Padding(0, 1),
		label:   lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color(mutedColor)),
		focused: lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color(accentColor)).Bold(true),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(accentColor)).
			Padding(1, 2),
	}
}
