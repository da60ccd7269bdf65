package http

import (
	"context"
	"errors"
	"io"
	"net"
	stdhttp "net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/session"
)

// Kind names the WebSocket transport in logs and the session journal.
const Kind = "ws"

// WSOptions tune WebSocket chat connections.
type WSOptions struct {
	// MaxLineBytes caps a single inbound frame; zero keeps the library default.
	MaxLineBytes int
	WriteTimeout time.Duration
}

// WSHandler upgrades HTTP connections and hands them to the session service.
type WSHandler struct {
	sessions *session.Service
	opts     WSOptions
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(sessions *session.Service, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{sessions: sessions, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	if h.opts.MaxLineBytes > 0 {
		conn.SetReadLimit(int64(h.opts.MaxLineBytes))
	}

	t := newWSTransport(conn, h.opts.WriteTimeout)
	if err := h.sessions.Serve(r.Context(), r.RemoteAddr, Kind, t); err != nil {
		h.log.Debug().Err(err).Str("peer", r.RemoteAddr).Msg("ws session ended with error")
	}
}

// wsTransport carries chat lines over text frames. An inbound frame may hold
// several "\n"-separated lines; every outbound line is its own frame.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	pending      []string

	// closed is set once either side has closed the connection.
	closed    atomic.Bool
	closeOnce sync.Once
}

func newWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *wsTransport {
	return &wsTransport{conn: conn, writeTimeout: writeTimeout}
}

func (t *wsTransport) ReadLine(ctx context.Context) (string, error) {
	for len(t.pending) == 0 {
		_, data, err := t.conn.Read(ctx)
		if err != nil {
			return "", t.readErr(ctx, err)
		}
		t.pending = strings.Split(string(data), "\n")
	}

	line := t.pending[0]
	t.pending = t.pending[1:]
	return strings.TrimSuffix(line, "\r"), nil
}

func (t *wsTransport) readErr(ctx context.Context, err error) error {
	if t.closed.Load() {
		return net.ErrClosed
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		t.closed.Store(true)
		return io.EOF
	}
	if ctx.Err() != nil {
		// server shutdown
		t.closed.Store(true)
		return io.EOF
	}
	return err
}

func (t *wsTransport) WriteLine(ctx context.Context, line string) error {
	wctx := context.WithoutCancel(ctx)
	if t.writeTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(wctx, t.writeTimeout)
		defer cancel()
	}

	err := t.conn.Write(wctx, websocket.MessageText, []byte(line))
	if err != nil && (t.closed.Load() || errors.Is(err, net.ErrClosed)) {
		return net.ErrClosed
	}
	return err
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		err = t.conn.Close(websocket.StatusNormalClosure, "")
	})
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
