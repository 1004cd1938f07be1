package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"assistant-chat/session"
)

// Logout confirmation strings are shown exactly as written
const (
	confirmPrompt = "Lock kar diya jaye?"
	confirmLabel  = "Haan, Lock karo"
	cancelLabel   = "Firse sochta hoon"
)

// View renders the current screen. It only reads the model.
func (m Model) View() string {
	var body string
	switch m.state.Page {
	case session.PageRegister:
		body = m.viewForm("🧑‍💻 Create an Account", m.register, "Register", m.keys.formHelp("go to login"))
	case session.PageLogin:
		body = m.viewForm("🔓 Login", m.login, "Login", m.keys.formHelp("go to register"))
	case session.PageChat:
		body = m.viewChat()
	}
	return m.styles.app.Render(body)
}

func (m Model) viewForm(title string, f form, action string, bindings []key.Binding) string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n")
	b.WriteString(f.username.View())
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n\n")
	b.WriteString(m.status(action))
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("💬 Chat with your AI Assistant"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("👋 Welcome, %s\n\n", lipgloss.NewStyle().Bold(true).Render(m.state.Username)))

	b.WriteString(m.styles.subtle.Render("🕓 Chat History"))
	b.WriteString("\n")
	b.WriteString(m.styles.transcript.Render(m.transcript.View()))
	b.WriteString("\n")

	b.WriteString(m.viewTopics())
	b.WriteString("\n")
	b.WriteString(m.message.View())
	b.WriteString("\n\n")

	if m.state.LogoutConfirmPending {
		modal := fmt.Sprintf("%s\n[y] %s   [n] %s", confirmPrompt, confirmLabel, cancelLabel)
		b.WriteString(m.styles.modal.Render(modal))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView(m.keys.confirmHelp()))
		return b.String()
	}

	b.WriteString(m.status("Send"))
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.chatHelp()))
	return b.String()
}

func (m Model) viewTopics() string {
	parts := make([]string, 0, len(session.Topics()))
	for _, t := range session.Topics() {
		if t == m.topic {
			parts = append(parts, m.styles.topicActive.Render("["+string(t)+"]"))
		} else {
			parts = append(parts, m.styles.topicIdle.Render(string(t)))
		}
	}
	return "📚 Topic: " + strings.Join(parts, " ")
}

// status is the spinner while busy, otherwise the notice of the session
func (m Model) status(action string) string {
	if m.busy {
		return m.spinner.View() + " " + action + "..."
	}
	return m.styles.notice(m.state.Notice)
}

// renderTranscript lists the history newest first
func renderTranscript(history []session.ChatEntry, s styles, width int) string {
	if len(history) == 0 {
		return s.subtle.Render("No messages yet.")
	}

	wrap := lipgloss.NewStyle().Width(max(width, 10))
	lines := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		entry := history[i]
		label := s.user
		if entry.Sender == session.SenderAssistant {
			label = s.assistant
		}
		head := label.Render(fmt.Sprintf("%s (%s):", entry.Sender, entry.Timestamp))
		lines = append(lines, wrap.Render(head+" "+entry.Text))
	}
	return strings.Join(lines, "\n")
}
