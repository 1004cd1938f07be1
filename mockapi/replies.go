package mockapi

import "fmt"

// Responder produces the assistant reply for one chat message
type Responder func(username, topic, message string) string

// EchoResponder answers with a canned line per topic followed by an echo of
// the message
func EchoResponder(username, topic, message string) string {
	var lead string
	switch topic {
	case "Weather":
		lead = "No forecast feed in the stub backend, but it is always sunny here."
	case "Science":
		lead = "Science desk here."
	case "Tech":
		lead = "Tech desk here."
	case "News":
		lead = "No headlines in the stub backend today."
	default:
		lead = fmt.Sprintf("Hi %s!", username)
	}
	return fmt.Sprintf("%s Echo: %s", lead, message)
}
