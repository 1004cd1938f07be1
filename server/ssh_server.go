// Package server serves the chat terminal UI to SSH clients. Every SSH
// session gets its own UI program and its own session state.
package server

import (
	"context"
	"errors"
	"net"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"

	"assistant-chat/chat"
	"assistant-chat/session"
)

// SSHServer represents an SSH server instance
type SSHServer struct {
	config   *ssh.ServerConfig
	listener net.Listener
	api      session.Backend
	wg       sync.WaitGroup
}

// NewSSHServer listens on addr. Sessions talk to api.
func NewSSHServer(addr string, hostKey ssh.Signer, api session.Backend) (*SSHServer, error) {
	config := &ssh.ServerConfig{
		// Anyone may connect; accounts live in the chat backend
		NoClientAuth: true,
	}
	config.AddHostKey(hostKey)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &SSHServer{
		config:   config,
		listener: listener,
		api:      api,
	}, nil
}

// Addr returns the address the server is listening on
func (s *SSHServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Start accepts connections until ctx is done, then waits for open
// sessions to end
func (s *SSHServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	log.Info().Str("addr", s.listener.Addr().String()).Msg("SSH server listening")

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			log.Warn().Err(err).Msg("failed to accept connection")
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection processes an incoming SSH connection
func (s *SSHServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("SSH handshake failed")
		return
	}
	defer sshConn.Close()

	username := sshConn.User()
	log.Info().Str("remote", sshConn.RemoteAddr().String()).Str("user", username).Msg("new SSH connection")

	go ssh.DiscardRequests(reqs)

	// Closing the connection ends every channel when the server shuts down
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-ctx.Done():
			sshConn.Close()
		case <-connDone:
		}
	}()

	var wg sync.WaitGroup
	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			log.Warn().Err(err).Msg("failed to accept channel")
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleSession(ctx, channel, requests, username)
		}()
	}
	wg.Wait()
}

// handleSession runs one chat UI on channel. Window size requests keep
// arriving while the UI runs, so they are forwarded to the program.
func (s *SSHServer) handleSession(ctx context.Context, channel ssh.Channel, requests <-chan *ssh.Request, username string) {
	defer channel.Close()

	logger := log.With().Str("session", uuid.NewString()).Str("user", username).Logger()
	logger.Info().Msg("session opened")

	var (
		size    ptySize
		program *tea.Program
		done    chan struct{}
	)

	for req := range requests {
		switch req.Type {
		case "pty-req":
			parsed, ok := parsePtyRequest(req.Payload)
			if ok {
				size = parsed
			}
			req.Reply(ok, nil)

		case "window-change":
			if parsed, ok := parseWindowChange(req.Payload); ok {
				size = parsed
				if program != nil {
					go program.Send(size.msg())
				}
			}
			if req.WantReply {
				req.Reply(true, nil)
			}

		case "shell", "exec":
			if program != nil {
				req.Reply(false, nil)
				continue
			}
			req.Reply(true, nil)

			program = chat.NewProgram(ctx, s.api, chat.Options{
				Username:  username,
				Input:     channel,
				Output:    channel,
				AltScreen: true,
			})
			done = make(chan struct{})
			go runProgram(program, channel, size, logger, done)

		default:
			req.Reply(false, nil)
		}
	}

	// The client went away; stop the UI if it is still running
	if program != nil {
		program.Quit()
		<-done
	}
	logger.Info().Msg("session closed")
}

func runProgram(p *tea.Program, channel ssh.Channel, size ptySize, logger zerolog.Logger, done chan struct{}) {
	defer close(done)

	if size.valid() {
		// Send blocks until the program's loop is running
		go p.Send(size.msg())
	}
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Warn().Err(err).Msg("chat UI stopped")
	}

	// Ending the channel ends the request loop of handleSession
	channel.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
	channel.Close()
}
