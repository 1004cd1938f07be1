package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-chat/backend"
	"assistant-chat/session"
)

type stubBackend struct {
	calls  int
	topics []string
	reply  string
	err    error
}

func (s *stubBackend) Register(ctx context.Context, username, password string) error {
	s.calls++
	return s.err
}

func (s *stubBackend) Login(ctx context.Context, username, password string) error {
	s.calls++
	return s.err
}

func (s *stubBackend) Chat(ctx context.Context, username, message, topic string) (string, error) {
	s.calls++
	s.topics = append(s.topics, topic)
	return s.reply, s.err
}

func newTestModel(api session.Backend) Model {
	return NewModel(context.Background(), session.NewController(api), "")
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// settle runs cmd and feeds any session events it produces back into m.
// Spinner ticks are dropped so nothing sleeps.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = settle(t, m, c)
		}
	case eventMsg:
		var next tea.Cmd
		m, next = update(t, m, msg)
		m = settle(t, m, next)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: k})
}

func submit(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := press(t, m, tea.KeyEnter)
	return settle(t, m, cmd)
}

func fillForm(t *testing.T, m Model, username, password string) Model {
	t.Helper()
	m = typeText(t, m, username)
	m, _ = press(t, m, tea.KeyTab)
	return typeText(t, m, password)
}

func TestStartsOnRegister(t *testing.T) {
	m := newTestModel(&stubBackend{})

	assert.Equal(t, session.PageRegister, m.state.Page)
	assert.Contains(t, m.View(), "Create an Account")
}

func TestEmptyFormShowsWarningWithoutCall(t *testing.T) {
	api := &stubBackend{}
	m := submit(t, newTestModel(api))

	assert.Zero(t, api.calls)
	assert.Equal(t, session.PageRegister, m.state.Page)
	assert.Contains(t, m.View(), "Please enter both username and password.")
}

func TestSwitchBetweenForms(t *testing.T) {
	m := newTestModel(&stubBackend{})

	m, _ = press(t, m, tea.KeyCtrlN)
	assert.Equal(t, session.PageLogin, m.state.Page)
	assert.Contains(t, m.View(), "Login")

	m, _ = press(t, m, tea.KeyCtrlN)
	assert.Equal(t, session.PageRegister, m.state.Page)
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := newTestModel(&stubBackend{})
	m = fillForm(t, m, "bob", "secret")

	m, cmd := press(t, m, tea.KeyEnter)
	require.True(t, m.busy)
	assert.Contains(t, m.View(), "Register...")

	m = typeText(t, m, "x")
	assert.Equal(t, "secret", m.register.password.Value())

	m = settle(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, session.PageLogin, m.state.Page)
}

func TestRejectionShownInline(t *testing.T) {
	api := &stubBackend{err: &backend.StatusError{StatusCode: 409, Body: "Username already exists"}}
	m := newTestModel(api)
	m = submit(t, fillForm(t, m, "bob", "secret"))

	assert.Equal(t, session.PageRegister, m.state.Page)
	assert.Contains(t, m.View(), "Registration failed: Username already exists")
}

func TestFullFlow(t *testing.T) {
	api := &stubBackend{reply: "Sunny"}
	m := newTestModel(api)

	m = submit(t, fillForm(t, m, "bob", "secret"))
	require.Equal(t, session.PageLogin, m.state.Page)
	assert.Empty(t, m.register.password.Value())

	m = submit(t, fillForm(t, m, "bob", "secret"))
	require.Equal(t, session.PageChat, m.state.Page)
	assert.Contains(t, m.View(), "Welcome")
	assert.Contains(t, m.View(), "bob")

	m = typeText(t, m, "What's the weather?")
	m, _ = press(t, m, tea.KeyCtrlT)
	assert.Equal(t, session.TopicWeather, m.topic)
	m = submit(t, m)

	require.Len(t, m.state.History, 2)
	assert.Equal(t, []string{"Weather"}, api.topics)
	assert.Empty(t, m.message.Value())
	view := m.View()
	assert.Contains(t, view, "What's the weather?")
	assert.Contains(t, view, "Sunny")

	// cancel keeps everything
	m, _ = press(t, m, tea.KeyCtrlO)
	assert.Contains(t, m.View(), confirmPrompt)
	m = typeText(t, m, "n")
	assert.False(t, m.state.LogoutConfirmPending)
	assert.Len(t, m.state.History, 2)
	assert.Empty(t, m.message.Value())

	m, _ = press(t, m, tea.KeyCtrlO)
	m = typeText(t, m, "y")
	assert.Equal(t, session.PageLogin, m.state.Page)
	assert.Empty(t, m.state.History)
	assert.False(t, m.state.LoggedIn)
}

func TestEmptyMessageWarns(t *testing.T) {
	api := &stubBackend{}
	m := newTestModel(api)
	m = submit(t, fillForm(t, m, "bob", "secret"))
	m = submit(t, fillForm(t, m, "bob", "secret"))
	calls := api.calls

	m = submit(t, m)
	assert.Equal(t, calls, api.calls)
	assert.Contains(t, m.View(), "Please type a message first.")
}

func TestPrefilledUsername(t *testing.T) {
	m := NewModel(context.Background(), session.NewController(&stubBackend{}), "carol")

	assert.Equal(t, "carol", m.register.username.Value())
	assert.Equal(t, "carol", m.login.username.Value())
}

func TestStartingTopic(t *testing.T) {
	m := newModel(context.Background(), &stubBackend{}, Options{Topic: session.TopicWeather})
	assert.Equal(t, session.TopicWeather, m.topic)

	m = newModel(context.Background(), &stubBackend{}, Options{Topic: "Sports"})
	assert.Equal(t, session.TopicGeneral, m.topic)
}

func TestResize(t *testing.T) {
	m := newTestModel(&stubBackend{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 114, m.transcript.Width)
	assert.Equal(t, 26, m.transcript.Height)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 5, Height: 5})
	assert.Equal(t, 10, m.transcript.Width)
	assert.Equal(t, 3, m.transcript.Height)
}

func TestScrollKeptUntilHistoryChanges(t *testing.T) {
	api := &stubBackend{reply: "ok"}
	m := newTestModel(api)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 18})

	m = submit(t, fillForm(t, m, "bob", "secret"))
	m = submit(t, fillForm(t, m, "bob", "secret"))
	require.Equal(t, session.PageChat, m.state.Page)
	for i := 0; i < 5; i++ {
		m = submit(t, typeText(t, m, fmt.Sprintf("message %d", i)))
	}
	require.Len(t, m.state.History, 10)
	require.Zero(t, m.transcript.YOffset)

	m, _ = press(t, m, tea.KeyPgDown)
	scrolled := m.transcript.YOffset
	require.Positive(t, scrolled)

	// a notice and a resize leave the scroll alone
	m = submit(t, m)
	assert.Contains(t, m.View(), "Please type a message first.")
	assert.Equal(t, scrolled, m.transcript.YOffset)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 17})
	assert.Equal(t, scrolled, m.transcript.YOffset)

	// a new exchange jumps back to the newest entries
	m = submit(t, typeText(t, m, "one more"))
	require.Len(t, m.state.History, 12)
	assert.Zero(t, m.transcript.YOffset)
}

func TestTranscriptNewestFirst(t *testing.T) {
	history := []session.ChatEntry{
		{Sender: session.SenderUser, Text: "first", Timestamp: "10:00:00"},
		{Sender: session.SenderAssistant, Text: "second", Timestamp: "10:00:00"},
	}
	out := renderTranscript(history, defaultStyles(), 60)

	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "first"))
	assert.Contains(t, out, "10:00:00")
}
