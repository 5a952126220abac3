package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sitelinkhq/sitelink/pkg/ui"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ui.Indigo).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(ui.DimText)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(ui.Indigo)

	errStyle = lipgloss.NewStyle().
			Foreground(ui.Red)

	statusStyle = lipgloss.NewStyle().
			Foreground(ui.DimText).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ui.Dim)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.Yellow).
			Padding(0, 2)
)
