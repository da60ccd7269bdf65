package http

import (
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/session"
	"github.com/vovakirdan/linechat/internal/store"
)

type testEnv struct {
	ts  *httptest.Server
	svc *session.Service
}

func startTestServer(t *testing.T, journal store.Store, mutate func(*config.Config)) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	svc := session.NewService(core.NewRegistry(&logger), journal, session.Options{}, &logger)

	cfg := config.Default()
	cfg.HTTPAddr = ":0"
	cfg.WriteTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	server := NewServer(svc, journal, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, svc: svc}
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

// dialWS connects to /ws and consumes the welcome banner.
func (e *testEnv) dialWS(t *testing.T) *wsClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })

	c := &wsClient{t: t, conn: conn}
	require.Equal(t, "", c.read())
	require.True(t, strings.HasPrefix(c.read(), "You are connected from 127.0.0.1:"))
	require.Equal(t, "Welcome to IM server.", c.read())
	c.read()
	c.read()
	return c
}

func (c *wsClient) read() string {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	typ, data, err := c.conn.Read(ctx)
	require.NoError(c.t, err)
	require.Equal(c.t, websocket.MessageText, typ)
	return string(data)
}

func (c *wsClient) send(frame string) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(c.t, c.conn.Write(ctx, websocket.MessageText, []byte(frame)))
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := stdhttp.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
