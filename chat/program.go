// Package chat is the terminal user interface of the assistant chat client
package chat

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"assistant-chat/session"
)

// Options tune a terminal UI program
type Options struct {
	// Username is prefilled in the register and login forms
	Username string
	// Input and Output default to the process terminal when nil
	Input  io.Reader
	Output io.Writer
	// AltScreen runs the UI in the terminal's alternate screen
	AltScreen bool
	// Topic is selected when the chat screen opens. Empty or unknown means General.
	Topic session.Topic
}

func newModel(ctx context.Context, api session.Backend, opts Options) Model {
	m := NewModel(ctx, session.NewController(api), opts.Username)
	if opts.Topic.Valid() {
		m.topic = opts.Topic
	}
	return m
}

// NewProgram builds a program for one fresh session against api
func NewProgram(ctx context.Context, api session.Backend, opts Options) *tea.Program {
	model := newModel(ctx, api, opts)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		// A remote terminal: signals belong to the process, not this session
		progOpts = append(progOpts, tea.WithInput(opts.Input), tea.WithoutSignalHandler())
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	return tea.NewProgram(model, progOpts...)
}

// Run runs a program until the user quits or ctx is done
func Run(ctx context.Context, api session.Backend, opts Options) error {
	_, err := NewProgram(ctx, api, opts).Run()
	if err != nil && ctx.Err() != nil {
		// cancelled from outside, not a UI failure
		return nil
	}
	return err
}
