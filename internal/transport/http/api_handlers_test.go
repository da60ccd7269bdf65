package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
	"github.com/vovakirdan/linechat/internal/store"
	"github.com/vovakirdan/linechat/internal/store/sqlite"
)

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t, nil, nil)

	status, body := env.do(t, stdhttp.MethodGet, "/health", "")
	require.Equal(t, stdhttp.StatusOK, status)
	require.Equal(t, "ok", string(body))
}

func TestStatsAndRooms(t *testing.T) {
	req := require.New(t)
	env := startTestServer(t, nil, nil)

	alice := env.dialWS(t)
	alice.send("alice")
	req.Equal("Name set to 'alice'. You can now chat.", alice.read())
	alice.send("#join secret")
	req.Equal("Joined room 'secret'.", alice.read())
	bob := env.dialWS(t)
	bob.send("bad name")
	req.Equal(proto.MsgInvalidName, bob.read())

	status, body := env.do(t, stdhttp.MethodGet, "/api/stats", "")
	req.Equal(stdhttp.StatusOK, status)
	stats := decode[StatsResponse](t, body)
	req.Equal(2, stats.Members)
	req.Equal(1, stats.Named)
	req.Equal(2, stats.Rooms)
	req.Equal(int64(2), stats.Active)

	status, body = env.do(t, stdhttp.MethodGet, "/api/rooms", "")
	req.Equal(stdhttp.StatusOK, status)
	rooms := decode[[]core.RoomInfo](t, body)
	req.Len(rooms, 2)
	req.Equal(core.DefaultRoom, rooms[0].Name)
	req.Len(rooms[0].Members, 2)
	req.Contains(rooms[0].Members, "alice")
	req.Equal("secret", rooms[1].Name)
	req.Equal([]string{"alice"}, rooms[1].Members)
}

func TestAnnounceReachesEveryone(t *testing.T) {
	req := require.New(t)
	env := startTestServer(t, nil, nil)

	alice := env.dialWS(t)
	alice.send("alice")
	req.Equal("Name set to 'alice'. You can now chat.", alice.read())
	alice.send("#leave public")
	req.Equal("Left room 'public'.", alice.read())
	unnamed := env.dialWS(t)
	unnamed.send("bad name")
	req.Equal(proto.MsgInvalidName, unnamed.read())

	status, body := env.do(t, stdhttp.MethodPost, "/api/announce", `{"text":"maintenance at noon"}`)
	req.Equal(stdhttp.StatusOK, status)
	req.Equal(2, decode[AnnounceResponse](t, body).Delivered)

	req.Equal("[server] >> maintenance at noon", alice.read())
	req.Equal("[server] >> maintenance at noon", unnamed.read())
}

func TestAnnounceValidation(t *testing.T) {
	env := startTestServer(t, nil, nil)

	for _, body := range []string{`{}`, `not json`, `{"text":"   "}`, `{"text":"two\nlines"}`} {
		status, resp := env.do(t, stdhttp.MethodPost, "/api/announce", body)
		require.Equal(t, stdhttp.StatusBadRequest, status, body)
		require.NotEmpty(t, decode[ErrorResponse](t, resp).Error)
	}
}

func TestAnnounceRateLimit(t *testing.T) {
	env := startTestServer(t, nil, func(cfg *config.Config) {
		cfg.AnnounceRateLimit = 2
	})

	for i := 0; i < 2; i++ {
		status, _ := env.do(t, stdhttp.MethodPost, "/api/announce", `{"text":"hi"}`)
		require.Equal(t, stdhttp.StatusOK, status)
	}
	status, _ := env.do(t, stdhttp.MethodPost, "/api/announce", `{"text":"hi"}`)
	require.Equal(t, stdhttp.StatusTooManyRequests, status)
}

func TestSessionsWithoutJournal(t *testing.T) {
	env := startTestServer(t, nil, nil)

	status, body := env.do(t, stdhttp.MethodGet, "/api/sessions", "")
	require.Equal(t, stdhttp.StatusOK, status)
	require.Empty(t, decode[[]store.Session](t, body))

	status, _ = env.do(t, stdhttp.MethodGet, "/api/sessions?limit=zero", "")
	require.Equal(t, stdhttp.StatusBadRequest, status)
}

func TestSessionsFromJournal(t *testing.T) {
	req := require.New(t)
	journal, err := sqlite.New(":memory:")
	req.NoError(err)
	t.Cleanup(func() { _ = journal.Close() })

	env := startTestServer(t, journal, nil)
	alice := env.dialWS(t)
	alice.send("alice")
	req.Equal("Name set to 'alice'. You can now chat.", alice.read())
	_ = alice.conn.Close(websocket.StatusNormalClosure, "bye")

	req.Eventually(func() bool {
		return env.svc.Active() == 0
	}, 2*time.Second, 10*time.Millisecond)

	status, body := env.do(t, stdhttp.MethodGet, "/api/sessions?limit=5", "")
	req.Equal(stdhttp.StatusOK, status)
	sessions := decode[[]store.Session](t, body)
	req.Len(sessions, 1)
	req.Equal(Kind, sessions[0].Transport)
	req.Equal("alice", sessions[0].Name)
	req.Equal("eof", sessions[0].CloseReason)
	req.NotNil(sessions[0].DisconnectedAt)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1)
	rl.now = func() time.Time { return now }

	require.True(t, rl.allow())
	require.False(t, rl.allow())

	now = now.Add(time.Minute)
	require.True(t, rl.allow())

	require.True(t, newRateLimiter(0).allow())
}
