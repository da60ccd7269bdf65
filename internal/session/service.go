package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/store"
)

// Options tune connections created by a Service.
type Options struct {
	MailboxSize int
}

// Service runs connections for any transport against one shared registry.
type Service struct {
	registry *core.Registry
	journal  store.SessionStore
	opts     Options
	log      *zerolog.Logger

	active atomic.Int64
}

// NewService builds a Service. A nil journal disables session journaling.
func NewService(reg *core.Registry, journal store.SessionStore, opts Options, logger *zerolog.Logger) *Service {
	if journal == nil {
		journal = store.Nop{}
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = core.DefaultMailboxSize
	}
	l := logger.With().Str("component", "session").Logger()
	return &Service{
		registry: reg,
		journal:  journal,
		opts:     opts,
		log:      &l,
	}
}

// Registry returns the shared registry.
func (s *Service) Registry() *core.Registry {
	return s.registry
}

// Active returns the number of connections currently being served.
func (s *Service) Active() int64 {
	return s.active.Load()
}

// Serve runs one connection from peer over t until its inbound stream ends.
// kind names the transport in logs and the journal.
func (s *Service) Serve(ctx context.Context, peer, kind string, t Transport) error {
	return s.serve(ctx, s.NewConn(peer, kind, t))
}

// NewConn prepares a connection without starting it.
func (s *Service) NewConn(peer, kind string, t Transport) *Conn {
	return newConn(peer, uuid.NewString(), kind, t, s.registry, s.journal, s.opts.MailboxSize, s.log)
}

func (s *Service) serve(ctx context.Context, c *Conn) error {
	s.active.Add(1)
	defer s.active.Add(-1)

	journalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	err := s.journal.OpenSession(journalCtx, &store.Session{
		ID:          c.sessionID,
		Peer:        c.id,
		Transport:   c.kind,
		ConnectedAt: time.Now(),
	})
	cancel()
	if err != nil {
		c.log.Warn().Err(err).Msg("journal open failed")
	}

	c.log.Info().Msg("client connected")
	serveErr := c.Serve(ctx)

	reason := "eof"
	if serveErr != nil {
		reason = serveErr.Error()
		c.log.Warn().Err(serveErr).Msg("connection closed with error")
	} else {
		c.log.Info().Msg("client disconnected")
	}

	journalCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := s.journal.CloseSession(journalCtx, c.sessionID, reason, time.Now()); err != nil {
		c.log.Warn().Err(err).Msg("journal close failed")
	}

	return serveErr
}

// ServeConn runs a connection created by NewConn.
func (s *Service) ServeConn(ctx context.Context, c *Conn) error {
	return s.serve(ctx, c)
}
