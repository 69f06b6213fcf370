// Package sshplay serves the terminal game over SSH, one session per connection.
package sshplay

import (
	"context"
	"errors"
	"fmt"
	"net"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog/log"

	"lockreact/internal/game"
	"lockreact/internal/tui"
)

// Server wraps a wish SSH server whose sessions each play their own game.
type Server struct {
	srv   *ssh.Server
	store *game.Store
}

// New builds the server. hostKeyPath is created on first start when missing.
func New(addr, hostKeyPath string, store *game.Store) (*Server, error) {
	s := &Server{store: store}
	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}
	srv, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	s.srv = srv
	return s, nil
}

func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	logger := log.With().
		Str("user", sess.User()).
		Str("remote", sess.RemoteAddr().String()).
		Logger()
	gs := s.store.CreateSession(game.WithLogger(logger))
	logger.Info().Str("session_id", gs.ID).Msg("ssh player connected")

	go func() {
		<-sess.Context().Done()
		s.store.Delete(gs.ID)
		logger.Info().Str("session_id", gs.ID).Msg("ssh player disconnected")
	}()

	model := tui.NewModel(gs, tui.WithRenderer(bm.MakeRenderer(sess)))
	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.srv.Addr).Msg("ssh server starting")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("ssh server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}
