package app

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/linechat/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRunServesAndShutsDown(t *testing.T) {
	req := require.New(t)

	cfg := config.Default()
	cfg.Addr = freeAddr(t)
	cfg.HTTPAddr = ""
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.JournalPath = filepath.Join(t.TempDir(), "journal.db")

	logger := zerolog.Nop()
	application, err := New(&cfg, &logger)
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	var conn net.Conn
	req.Eventually(func() bool {
		conn, err = net.Dial("tcp", cfg.Addr)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer conn.Close()

	reader := bufio.NewReader(conn)
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	for i := 0; i < 5; i++ {
		_, err := reader.ReadString('\n')
		req.NoError(err)
	}
	_, err = conn.Write([]byte("alice\n"))
	req.NoError(err)
	line, err := reader.ReadString('\n')
	req.NoError(err)
	req.Equal("Name set to 'alice'. You can now chat.\r\n", line)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	req.Equal(int64(0), application.sessions.Active())
}

func TestNewRejectsBadJournalPath(t *testing.T) {
	cfg := config.Default()
	cfg.JournalPath = filepath.Join(t.TempDir(), "missing", "dir", "journal.db")

	logger := zerolog.Nop()
	_, err := New(&cfg, &logger)
	require.Error(t, err)
}
