package chat

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	SwitchPage key.Binding
	Topic      key.Binding
	Logout     key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		SwitchPage: key.NewBinding(
			key.WithKeys("ctrl+n"),
		),
		Topic: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "topic"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "logout"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", confirmLabel),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", cancelLabel),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// formHelp lists the bindings of the Register and Login screens. The switch
// binding's label depends on the screen.
func (k keyMap) formHelp(switchLabel string) []key.Binding {
	switchPage := k.SwitchPage
	switchPage.SetHelp("ctrl+n", switchLabel)
	return []key.Binding{k.Next, k.Submit, switchPage, k.Quit}
}

func (k keyMap) chatHelp() []key.Binding {
	send := k.Submit
	send.SetHelp("enter", "send")
	return []key.Binding{send, k.Topic, k.ScrollUp, k.Logout, k.Quit}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}
