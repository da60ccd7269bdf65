package session

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/store"
)

const waitFor = 2 * time.Second

// pipeTransport is an in-memory Transport. Lines sent by the test arrive on
// in; lines written by the connection appear on out.
type pipeTransport struct {
	in     chan string
	out    chan string
	closed chan struct{}
	once   sync.Once

	// gate, when non-nil, blocks every write until it is closed.
	gate chan struct{}
	// failWrites, once closed, makes every write fail with errWrite.
	failWrites chan struct{}
	readErr    error

	// writes counts WriteLine calls, including failed ones.
	writes atomic.Int32
}

var (
	errWrite = errors.New("connection reset by peer")
	errRead  = errors.New("read: connection timed out")
)

func newPipeTransport() *pipeTransport {
	return &pipeTransport{
		in:         make(chan string),
		out:        make(chan string, 256),
		closed:     make(chan struct{}),
		failWrites: make(chan struct{}),
	}
}

func (p *pipeTransport) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-p.in:
		if !ok {
			if p.readErr != nil {
				return "", p.readErr
			}
			return "", io.EOF
		}
		return line, nil
	case <-p.closed:
		return "", net.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeTransport) WriteLine(_ context.Context, line string) error {
	p.writes.Add(1)
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-p.closed:
			return net.ErrClosed
		}
	}
	select {
	case <-p.failWrites:
		return errWrite
	default:
	}
	select {
	case <-p.closed:
		return net.ErrClosed
	case p.out <- line:
		return nil
	}
}

func (p *pipeTransport) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

type testClient struct {
	t    *testing.T
	conn *Conn
	tr   *pipeTransport
	done chan error
	hang sync.Once
}

func newTestService(t *testing.T, journal store.SessionStore) *Service {
	t.Helper()
	logger := zerolog.Nop()
	return NewService(core.NewRegistry(&logger), journal, Options{}, &logger)
}

// connect starts a connection and waits until it is registered and its
// banner has been written.
func connect(t *testing.T, svc *Service, peer string) *testClient {
	t.Helper()
	return connectWith(t, svc, peer, newPipeTransport())
}

func connectWith(t *testing.T, svc *Service, peer string, tr *pipeTransport) *testClient {
	t.Helper()

	c := &testClient{
		t:    t,
		conn: svc.NewConn(peer, "test", tr),
		tr:   tr,
		done: make(chan error, 1),
	}
	go func() {
		c.done <- svc.ServeConn(context.Background(), c.conn)
	}()
	t.Cleanup(c.hangUp)

	require.Eventually(t, func() bool {
		return c.conn.State() >= StateUnnamed
	}, waitFor, 5*time.Millisecond)

	if tr.gate == nil {
		for i := 0; i < 5; i++ {
			c.next()
		}
	}
	return c
}

func (c *testClient) send(line string) {
	c.t.Helper()
	select {
	case c.tr.in <- line:
	case <-time.After(waitFor):
		c.t.Fatalf("connection did not read %q", line)
	}
}

func (c *testClient) next() string {
	c.t.Helper()
	select {
	case line := <-c.tr.out:
		return line
	case <-time.After(waitFor):
		c.t.Fatalf("no line received by %s", c.conn.ID())
		return ""
	}
}

func (c *testClient) expect(want string) {
	c.t.Helper()
	require.Equal(c.t, want, c.next())
}

func (c *testClient) expectNothing() {
	c.t.Helper()
	select {
	case line := <-c.tr.out:
		c.t.Fatalf("%s received unexpected %q", c.conn.ID(), line)
	case <-time.After(100 * time.Millisecond):
	}
}

// name claims a display name and consumes the confirmation.
func (c *testClient) name(name string) {
	c.t.Helper()
	c.send(name)
	c.expect("Name set to '" + name + "'. You can now chat.")
}

// roundTrip waits until every earlier line from this client was handled.
func (c *testClient) roundTrip() string {
	c.t.Helper()
	c.send("#groups")
	return c.next()
}

// hangUp ends the inbound stream and waits for the connection to finish.
func (c *testClient) hangUp() {
	c.hang.Do(func() { close(c.tr.in) })
	select {
	case err := <-c.done:
		c.done <- err
	case <-time.After(waitFor):
	}
}

// wait blocks until Serve returned and yields its error.
func (c *testClient) wait() error {
	c.t.Helper()
	select {
	case err := <-c.done:
		c.done <- err
		return err
	case <-time.After(waitFor):
		c.t.Fatalf("connection %s did not finish", c.conn.ID())
		return nil
	}
}
