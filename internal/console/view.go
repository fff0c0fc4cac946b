package console

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	statusOnline = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	statusOffline = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	narrativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	speakerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("117"))

	systemStyle = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	inputBarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("238"))
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle().Padding(0, 1)
	return vp
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	status := statusOffline.Render("offline")
	if m.connected {
		status = statusOnline.Render("online")
	}
	header := headerStyle.Render("Project: Backdoor") + "  " + status

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		inputBarStyle.Width(m.width).Render(m.input.View()),
	)
}
