package chat

import (
	"github.com/charmbracelet/lipgloss"

	"assistant-chat/session"
)

type styles struct {
	app         lipgloss.Style
	title       lipgloss.Style
	subtle      lipgloss.Style
	user        lipgloss.Style
	assistant   lipgloss.Style
	success     lipgloss.Style
	warning     lipgloss.Style
	failure     lipgloss.Style
	modal       lipgloss.Style
	topicActive lipgloss.Style
	topicIdle   lipgloss.Style
	transcript  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		app:         lipgloss.NewStyle().Padding(1, 2),
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1),
		subtle:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		user:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warning:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		failure:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		modal:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(0, 1),
		topicActive: lipgloss.NewStyle().Bold(true).Underline(true),
		topicIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		transcript:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238")),
	}
}

// notice renders the inline message of the current screen, or nothing
func (s styles) notice(n session.Notice) string {
	switch n.Level {
	case session.NoticeSuccess:
		return s.success.Render("✔ " + n.Text)
	case session.NoticeWarning:
		return s.warning.Render("⚠ " + n.Text)
	case session.NoticeError:
		return s.failure.Render("✘ " + n.Text)
	default:
		return ""
	}
}
