package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"assistant-chat/session"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// lines used around the transcript on the chat screen
	chatChrome = 14
)

// eventMsg carries the outcome of a submitted form back to the UI loop
type eventMsg struct {
	event session.Event
}

// form is the username/password pair of the Register and Login screens
type form struct {
	username textinput.Model
	password textinput.Model
	focused  int
}

func newForm(username string) form {
	u := textinput.New()
	u.Prompt = "Username: "
	u.CharLimit = 64
	u.SetValue(username)

	p := textinput.New()
	p.Prompt = "Password: "
	p.CharLimit = 128
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'

	return form{username: u, password: p}
}

func (f *form) focus() tea.Cmd {
	if f.focused == 0 {
		f.password.Blur()
		return f.username.Focus()
	}
	f.username.Blur()
	return f.password.Focus()
}

func (f *form) blur() {
	f.username.Blur()
	f.password.Blur()
}

func (f *form) cycle(delta int) tea.Cmd {
	f.focused = (f.focused + delta + 2) % 2
	return f.focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focused == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (f form) values() (string, string) {
	return f.username.Value(), f.password.Value()
}

// Model is the terminal UI of one session. It renders whatever the
// controller's session says and turns key presses into controller calls.
type Model struct {
	ctx   context.Context
	ctrl  *session.Controller
	state session.Session

	register   form
	login      form
	message    textinput.Model
	topic      session.Topic
	transcript viewport.Model
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	styles     styles

	// shown is the history length last put in the transcript
	shown int

	// busy is set while a request is in flight; key presses are dropped
	busy   bool
	width  int
	height int
}

// NewModel creates the UI for ctrl. username, when set, is prefilled in both forms.
func NewModel(ctx context.Context, ctrl *session.Controller, username string) Model {
	msg := textinput.New()
	msg.Placeholder = "Your message here..."
	msg.Prompt = "> "
	msg.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:        ctx,
		ctrl:       ctrl,
		state:      ctrl.State(),
		register:   newForm(username),
		login:      newForm(username),
		message:    msg,
		topic:      session.TopicGeneral,
		transcript: viewport.New(defaultWidth-4, defaultHeight-chatChrome),
		spinner:    sp,
		help:       help.New(),
		keys:       defaultKeyMap(),
		styles:     defaultStyles(),
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.refreshTranscript()
	m.focusPage()
	return m
}

// Init starts the cursor blinking
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles one message from the program
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case eventMsg:
		m.busy = false
		cmd := m.apply(msg.event)
		return m, cmd

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.state.Page {
		case session.PageRegister:
			return m.updateRegister(msg)
		case session.PageLogin:
			return m.updateLogin(msg)
		case session.PageChat:
			return m.updateChat(msg)
		}
	}

	// Cursor blinks and the like go to whichever input has focus
	cmd := m.updateFocused(msg)
	return m, cmd
}

func (m Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		cmd := m.register.cycle(1)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.register.cycle(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		username, password := m.register.values()
		ctrl := m.ctrl
		return m.submit(func(ctx context.Context) session.Event {
			return ctrl.SubmitRegister(ctx, username, password)
		})
	case key.Matches(msg, m.keys.SwitchPage):
		cmd := m.apply(session.NavigatedToLogin{})
		return m, cmd
	}
	cmd := m.register.update(msg)
	return m, cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		cmd := m.login.cycle(1)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.login.cycle(-1)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		username, password := m.login.values()
		ctrl := m.ctrl
		return m.submit(func(ctx context.Context) session.Event {
			return ctrl.SubmitLogin(ctx, username, password)
		})
	case key.Matches(msg, m.keys.SwitchPage):
		cmd := m.apply(session.NavigatedToRegister{})
		return m, cmd
	}
	cmd := m.login.update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The confirmation is modal: only its two answers are accepted
	if m.state.LogoutConfirmPending {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			cmd := m.apply(session.LogoutConfirmed{})
			return m, cmd
		case key.Matches(msg, m.keys.Cancel):
			cmd := m.apply(session.LogoutCancelled{})
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		snapshot := m.state
		text := m.message.Value()
		topic := m.topic
		ctrl := m.ctrl
		return m.submit(func(ctx context.Context) session.Event {
			return ctrl.SubmitMessage(ctx, snapshot, text, topic)
		})
	case key.Matches(msg, m.keys.Topic):
		m.topic = m.topic.Next()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		cmd := m.apply(session.LogoutRequested{})
		return m, cmd
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.message, cmd = m.message.Update(msg)
	return m, cmd
}

// submit marks the model busy and runs call off the UI loop
func (m Model) submit(call func(ctx context.Context) session.Event) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx := m.ctx
	run := func() tea.Msg {
		return eventMsg{event: call(ctx)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// apply hands ev to the controller and syncs the widgets with the new session
func (m *Model) apply(ev session.Event) tea.Cmd {
	prev := m.state
	m.state = m.ctrl.Apply(ev)

	if len(m.state.History) > len(prev.History) {
		m.message.Reset()
	}
	m.refreshTranscript()

	if m.state.Page == prev.Page {
		return nil
	}
	m.register.password.Reset()
	m.login.password.Reset()
	return m.focusPage()
}

// focusPage gives keyboard focus to the first input of the current screen
func (m *Model) focusPage() tea.Cmd {
	m.register.blur()
	m.login.blur()
	m.message.Blur()

	switch m.state.Page {
	case session.PageRegister:
		m.register.focused = 0
		return m.register.focus()
	case session.PageLogin:
		m.login.focused = 0
		return m.login.focus()
	case session.PageChat:
		return m.message.Focus()
	}
	return nil
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	switch m.state.Page {
	case session.PageRegister:
		return m.register.update(msg)
	case session.PageLogin:
		return m.login.update(msg)
	case session.PageChat:
		var cmd tea.Cmd
		m.message, cmd = m.message.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	m.transcript.Width = max(width-6, 10)
	m.transcript.Height = max(height-chatChrome, 3)
	m.message.Width = max(width-10, 10)
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(renderTranscript(m.state.History, m.styles, m.transcript.Width))
	// newest entries are on top; keep the scroll position until they change
	if len(m.state.History) != m.shown {
		m.shown = len(m.state.History)
		m.transcript.GotoTop()
	}
}
