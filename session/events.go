package session

import (
	"errors"
	"slices"
	"time"

	"assistant-chat/backend"
)

// Event is something that happened to a session. The set of events is closed:
// only types in this package implement it.
type Event interface {
	isEvent()
}

// NavigatedToLogin is the "go to login" control on the Register screen
type NavigatedToLogin struct{}

// NavigatedToRegister is the "go to register" control on the Login screen
type NavigatedToRegister struct{}

// InputRejected means a form failed local validation and nothing was sent
type InputRejected struct {
	Reason string
}

// Registered is a 200 from the register endpoint
type Registered struct{}

// RegisterFailed carries the backend or transport error of a register call
type RegisterFailed struct {
	Err error
}

// LoggedIn is a 200 from the login endpoint
type LoggedIn struct {
	Username string
}

// LoginFailed carries the backend or transport error of a login call
type LoginFailed struct {
	Err error
}

// MessageExchanged is a successful chat call: the user's message and the reply
type MessageExchanged struct {
	Message string
	Reply   string
	At      time.Time
}

// MessageFailed carries the backend or transport error of a chat call
type MessageFailed struct {
	Err error
}

// LogoutRequested is the logout control on the Chat screen; it opens the confirmation
type LogoutRequested struct{}

// LogoutConfirmed is the confirm answer of the logout confirmation
type LogoutConfirmed struct{}

// LogoutCancelled is the cancel answer of the logout confirmation
type LogoutCancelled struct{}

func (NavigatedToLogin) isEvent()    {}
func (NavigatedToRegister) isEvent() {}
func (InputRejected) isEvent()       {}
func (Registered) isEvent()          {}
func (RegisterFailed) isEvent()      {}
func (LoggedIn) isEvent()            {}
func (LoginFailed) isEvent()         {}
func (MessageExchanged) isEvent()    {}
func (MessageFailed) isEvent()       {}
func (LogoutRequested) isEvent()     {}
func (LogoutConfirmed) isEvent()     {}
func (LogoutCancelled) isEvent()     {}

// Reduce applies ev to s and returns the resulting session. Events that make
// no sense on the current screen leave s untouched.
func Reduce(s Session, ev Event) Session {
	switch ev := ev.(type) {
	case NavigatedToLogin:
		if s.Page != PageRegister {
			return s
		}
		s.Page = PageLogin
		s.Notice = Notice{}

	case NavigatedToRegister:
		if s.Page != PageLogin {
			return s
		}
		s.Page = PageRegister
		s.Notice = Notice{}

	case InputRejected:
		s.Notice = Notice{Level: NoticeWarning, Text: ev.Reason}

	case Registered:
		if s.Page != PageRegister {
			return s
		}
		s.Page = PageLogin
		s.Notice = Notice{Level: NoticeSuccess, Text: msgRegistered}

	case RegisterFailed:
		if s.Page != PageRegister {
			return s
		}
		s.Notice = Notice{Level: NoticeError, Text: failureText("Registration failed", ev.Err)}

	case LoggedIn:
		if s.Page != PageLogin {
			return s
		}
		s.Page = PageChat
		s.LoggedIn = true
		s.Username = ev.Username
		s.Notice = Notice{Level: NoticeSuccess, Text: msgLoggedIn}

	case LoginFailed:
		if s.Page != PageLogin {
			return s
		}
		s.Notice = Notice{Level: NoticeError, Text: failureText("Login failed", ev.Err)}

	case MessageExchanged:
		if s.Page != PageChat || !s.LoggedIn {
			return s
		}
		ts := ev.At.Format(TimestampLayout)
		// Clip forces append to copy, so earlier snapshots keep their history
		s.History = append(slices.Clip(s.History),
			ChatEntry{Sender: SenderUser, Text: ev.Message, Timestamp: ts},
			ChatEntry{Sender: SenderAssistant, Text: ev.Reply, Timestamp: ts},
		)
		s.Notice = Notice{}

	case MessageFailed:
		if s.Page != PageChat {
			return s
		}
		s.Notice = Notice{Level: NoticeError, Text: failureText("Chat failed", ev.Err)}

	case LogoutRequested:
		if s.Page != PageChat {
			return s
		}
		s.LogoutConfirmPending = true

	case LogoutConfirmed:
		if s.Page != PageChat || !s.LogoutConfirmPending {
			return s
		}
		s = Session{Page: PageLogin, Notice: Notice{Level: NoticeSuccess, Text: msgLoggedOut}}

	case LogoutCancelled:
		s.LogoutConfirmPending = false
	}
	return s
}

// failureText turns a failed call into the notice shown to the user. A
// transport failure gets its own wording; a rejection shows the body verbatim.
func failureText(prefix string, err error) string {
	var (
		transportErr *backend.TransportError
		statusErr    *backend.StatusError
		decodeErr    *backend.DecodeError
	)
	switch {
	case err == nil:
		return prefix
	case errors.As(err, &transportErr):
		return "Connection error: " + transportErr.Err.Error()
	case errors.As(err, &statusErr):
		return prefix + ": " + statusErr.Body
	case errors.As(err, &decodeErr):
		return prefix + ": unreadable response: " + decodeErr.Body
	default:
		return prefix + ": " + err.Error()
	}
}
