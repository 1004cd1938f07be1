package server

import (
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/ssh"
)

// ptySize is the terminal size a client reported, in character cells
type ptySize struct {
	Columns uint32
	Rows    uint32
}

func (p ptySize) valid() bool {
	return p.Columns > 0 && p.Rows > 0
}

func (p ptySize) msg() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: int(p.Columns), Height: int(p.Rows)}
}

// ptyRequestMsg is the payload of a "pty-req" request (RFC 4254 6.2)
type ptyRequestMsg struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

// windowChangeMsg is the payload of a "window-change" request (RFC 4254 6.7)
type windowChangeMsg struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

func parsePtyRequest(payload []byte) (ptySize, bool) {
	var req ptyRequestMsg
	if err := ssh.Unmarshal(payload, &req); err != nil {
		return ptySize{}, false
	}
	return ptySize{Columns: req.Columns, Rows: req.Rows}, true
}

func parseWindowChange(payload []byte) (ptySize, bool) {
	var req windowChangeMsg
	if err := ssh.Unmarshal(payload, &req); err != nil {
		return ptySize{}, false
	}
	return ptySize{Columns: req.Columns, Rows: req.Rows}, true
}
