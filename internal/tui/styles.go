package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/note"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			Underline(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("238")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("51")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	toastStyles = map[string]lipgloss.Style{
		effects.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		effects.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		effects.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	}

	tagColors = map[note.Tag]lipgloss.Color{
		note.TagTodo:     lipgloss.Color("226"),
		note.TagWork:     lipgloss.Color("33"),
		note.TagPersonal: lipgloss.Color("201"),
		note.TagMeeting:  lipgloss.Color("51"),
		note.TagShopping: lipgloss.Color("46"),
	}
)

func tagBadge(tag note.Tag) string {
	c, ok := tagColors[tag]
	if !ok {
		return dimStyle.Render(string(tag))
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(tag))
}

func toastMarker(level string) string {
	switch level {
	case effects.LevelSuccess:
		return "✓"
	case effects.LevelError:
		return "✗"
	default:
		return "ℹ"
	}
}
