// Package session holds the client side state of one user's visit: which
// screen is showing, who is logged in and the chat transcript. All changes go
// through Reduce; the Controller pairs it with the backend calls.
package session

// Page identifies the screen the session is on
type Page int

const (
	PageRegister Page = iota
	PageLogin
	PageChat
)

func (p Page) String() string {
	switch p {
	case PageRegister:
		return "Register"
	case PageLogin:
		return "Login"
	case PageChat:
		return "Chat"
	default:
		return "Unknown"
	}
}

// Sender identifies who wrote a chat entry
type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
)

// String returns the label shown in the transcript
func (s Sender) String() string {
	if s == SenderAssistant {
		return "AI"
	}
	return "You"
}

// TimestampLayout is the HH:MM:SS layout of ChatEntry timestamps
const TimestampLayout = "15:04:05"

// ChatEntry is one line of the transcript
type ChatEntry struct {
	Sender    Sender
	Text      string
	Timestamp string
}

// NoticeLevel decides how a notice is styled
type NoticeLevel int

const (
	NoticeNone NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// Notice is the inline message shown on the current screen
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Session is the whole client state. It is a value: Reduce returns a new one
// and never writes into a History slice it did not allocate.
type Session struct {
	Page                 Page
	LoggedIn             bool
	Username             string
	History              []ChatEntry
	LogoutConfirmPending bool
	Notice               Notice
}

// New returns the initial session, sitting on the Register screen
func New() Session {
	return Session{Page: PageRegister}
}

// Guard redirects a session that would render the Chat screen without being
// logged in back to Login. Calling it again on its result is a no-op.
func Guard(s Session) Session {
	if s.Page == PageChat && !s.LoggedIn {
		s.Page = PageLogin
		s.LogoutConfirmPending = false
		s.Notice = Notice{Level: NoticeWarning, Text: msgLoginFirst}
	}
	return s
}

const (
	msgMissingCredentials = "Please enter both username and password."
	msgEmptyMessage       = "Please type a message first."
	msgLoginFirst         = "Please log in first."
	msgRegistered         = "Registered successfully! Please log in."
	msgLoggedIn           = "Logged in successfully!"
	msgLoggedOut          = "You have been logged out."
)
