package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/session"
)

// Kind names this transport in logs and the session journal.
const Kind = "tcp"

// Config tunes the TCP listener.
type Config struct {
	Addr         string
	MaxLineBytes int
	WriteTimeout time.Duration
}

// Server accepts TCP clients and hands each one to the session service.
type Server struct {
	cfg      Config
	sessions *session.Service
	log      *zerolog.Logger

	mu    sync.Mutex
	conns map[*lineConn]struct{}
	wg    sync.WaitGroup
}

// NewServer builds a TCP chat server.
func NewServer(cfg Config, sessions *session.Service, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "tcp").Logger()
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		log:      &l,
		conns:    make(map[*lineConn]struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or accepting
// fails. On return the listener and every live connection are closed and
// their goroutines have finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp chat listening")

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) || ctx.Err() == nil {
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}
		s.handle(ctx, conn)
	}

	_ = ln.Close()
	s.closeAll()
	s.wg.Wait()
	s.log.Info().Msg("tcp chat stopped")
	return acceptErr
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	lc := newLineConn(conn, s.cfg.MaxLineBytes, s.cfg.WriteTimeout)

	s.mu.Lock()
	s.conns[lc] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.conns, lc)
			s.mu.Unlock()
		}()

		peer := conn.RemoteAddr().String()
		if err := s.sessions.Serve(ctx, peer, Kind, lc); err != nil {
			s.log.Debug().Err(err).Str("client_id", peer).Msg("tcp session ended with error")
		}
	}()
}

// closeAll unblocks every pending read so connections wind down.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for lc := range s.conns {
		_ = lc.Close()
	}
}
