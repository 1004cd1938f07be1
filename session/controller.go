package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrValidation wraps every locally rejected input
var ErrValidation = errors.New("invalid input")

// Backend is the remote service the session talks to
type Backend interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Chat(ctx context.Context, username, message, topic string) (string, error)
}

// Controller owns one Session and drives it against a Backend.
//
// The Submit methods do validation and the network call and return the
// resulting Event without touching the session, so they may run off the UI
// loop. Apply is the only place the session changes.
type Controller struct {
	backend Backend
	now     func() time.Time
	state   Session
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the clock used to timestamp chat entries
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a controller on the Register screen
func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		now:     time.Now,
		state:   New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current session
func (c *Controller) State() Session {
	return c.state
}

// Apply reduces ev into the session, runs the login guard and returns the
// session that should be rendered next.
func (c *Controller) Apply(ev Event) Session {
	c.state = Guard(Reduce(c.state, ev))
	return c.state
}

// SubmitRegister validates the register form and calls the backend
func (c *Controller) SubmitRegister(ctx context.Context, username, password string) Event {
	if username == "" || password == "" {
		return InputRejected{Reason: msgMissingCredentials}
	}
	if err := c.backend.Register(ctx, username, password); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("register failed")
		return RegisterFailed{Err: err}
	}
	log.Info().Str("username", username).Msg("registered")
	return Registered{}
}

// SubmitLogin validates the login form and calls the backend
func (c *Controller) SubmitLogin(ctx context.Context, username, password string) Event {
	if username == "" || password == "" {
		return InputRejected{Reason: msgMissingCredentials}
	}
	if err := c.backend.Login(ctx, username, password); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("login failed")
		return LoginFailed{Err: err}
	}
	log.Info().Str("username", username).Msg("logged in")
	return LoggedIn{Username: username}
}

// SubmitMessage sends text on behalf of the user logged into s. s is a
// snapshot taken by the caller, usually from State.
func (c *Controller) SubmitMessage(ctx context.Context, s Session, text string, topic Topic) Event {
	if !s.LoggedIn {
		return InputRejected{Reason: msgLoginFirst}
	}
	if text == "" {
		return InputRejected{Reason: msgEmptyMessage}
	}
	if topic == "" {
		topic = TopicGeneral
	}
	if !topic.Valid() {
		return InputRejected{Reason: fmt.Sprintf("Unknown topic %q.", topic)}
	}

	reply, err := c.backend.Chat(ctx, s.Username, text, string(topic))
	if err != nil {
		log.Warn().Err(err).Str("username", s.Username).Str("topic", string(topic)).Msg("chat failed")
		return MessageFailed{Err: err}
	}
	log.Debug().Str("username", s.Username).Str("topic", string(topic)).Msg("chat exchanged")
	return MessageExchanged{Message: text, Reply: reply, At: c.now()}
}

// Register submits the register form and applies the outcome
func (c *Controller) Register(ctx context.Context, username, password string) error {
	return c.run(c.SubmitRegister(ctx, username, password))
}

// Login submits the login form and applies the outcome
func (c *Controller) Login(ctx context.Context, username, password string) error {
	return c.run(c.SubmitLogin(ctx, username, password))
}

// SendMessage sends text under topic and, on success, appends the exchange
// to the history
func (c *Controller) SendMessage(ctx context.Context, text string, topic Topic) error {
	return c.run(c.SubmitMessage(ctx, c.state, text, topic))
}

// GoToLogin switches from Register to Login
func (c *Controller) GoToLogin() { c.Apply(NavigatedToLogin{}) }

// GoToRegister switches from Login to Register
func (c *Controller) GoToRegister() { c.Apply(NavigatedToRegister{}) }

// RequestLogout opens the logout confirmation. Nothing is cleared yet.
func (c *Controller) RequestLogout() { c.Apply(LogoutRequested{}) }

// ConfirmLogout ends the session and returns to Login
func (c *Controller) ConfirmLogout() { c.Apply(LogoutConfirmed{}) }

// CancelLogout closes the confirmation and keeps the session
func (c *Controller) CancelLogout() { c.Apply(LogoutCancelled{}) }

func (c *Controller) run(ev Event) error {
	c.Apply(ev)
	return EventErr(ev)
}

// EventErr returns the error carried by a failure event, or nil
func EventErr(ev Event) error {
	switch ev := ev.(type) {
	case InputRejected:
		return fmt.Errorf("%w: %s", ErrValidation, ev.Reason)
	case RegisterFailed:
		return ev.Err
	case LoginFailed:
		return ev.Err
	case MessageFailed:
		return ev.Err
	default:
		return nil
	}
}
