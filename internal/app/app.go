package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/session"
	"github.com/vovakirdan/linechat/internal/store"
	"github.com/vovakirdan/linechat/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/linechat/internal/transport/http"
	"github.com/vovakirdan/linechat/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	tcp             *tcp.Server
	server          *stdhttp.Server
	sessions        *session.Service
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	var st store.Store = store.Nop{}
	if cfg.JournalPath != "" {
		db, err := sqlite.New(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		st = db
		logger.Info().Str("journal_path", cfg.JournalPath).Msg("session journal initialized")
	}

	registry := core.NewRegistry(logger)
	sessions := session.NewService(registry, st, session.Options{MailboxSize: cfg.MailboxSize}, logger)

	tcpServer := tcp.NewServer(tcp.Config{
		Addr:         cfg.Addr,
		MaxLineBytes: cfg.MaxLineBytes,
		WriteTimeout: cfg.WriteTimeout,
	}, sessions, logger)

	var server *stdhttp.Server
	if cfg.HTTPAddr != "" {
		server = transporthttp.NewServer(sessions, st, cfg, logger)
	}

	return &App{
		tcp:             tcpServer,
		server:          server,
		sessions:        sessions,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the TCP chat listener and the HTTP server, and blocks until
// context cancellation or a fatal error from either.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tcpErr := make(chan error, 1)
	go func() {
		tcpErr <- a.tcp.ListenAndServe(ctx)
	}()

	serverErr := make(chan error, 1)
	if a.server != nil {
		// WebSocket sessions are hijacked and outlive Shutdown; they end with ctx.
		a.server.BaseContext = func(net.Listener) context.Context { return ctx }
		go func() {
			a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				serverErr <- err
				return
			}
			serverErr <- nil
		}()
	}

	var runErr error
	select {
	case err := <-tcpErr:
		runErr = err
		tcpErr = nil
	case err := <-serverErr:
		runErr = err
		serverErr = nil
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer stop()

	if a.server != nil {
		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, err)
		}
		if serverErr != nil {
			runErr = errors.Join(runErr, <-serverErr)
		}
	}
	if tcpErr != nil {
		runErr = errors.Join(runErr, <-tcpErr)
	}
	a.waitSessions(shutdownCtx)

	return runErr
}

// waitSessions blocks until every chat session has finalized or ctx expires.
func (a *App) waitSessions(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for a.sessions.Active() > 0 {
		select {
		case <-ctx.Done():
			a.log.Warn().Int64("active", a.sessions.Active()).Msg("sessions still open at shutdown")
			return
		case <-ticker.C:
		}
	}
}

// cleanup closes the journal and other resources.
func (a *App) cleanup() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
		return
	}
	a.log.Info().Msg("store closed")
}
