package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
	"github.com/vovakirdan/linechat/internal/store"
)

// Conn drives one client: an inbound activity that turns lines into
// registry operations and an outbound activity that drains the mailbox to
// the transport. Both start behind a rendezvous so the banner and the first
// read never race.
type Conn struct {
	id        string
	sessionID string
	kind      string

	transport   Transport
	registry    *core.Registry
	journal     store.SessionStore
	participant *core.Participant

	state  atomic.Int32
	finish sync.Once
	log    zerolog.Logger
}

func newConn(id, sessionID, kind string, t Transport, reg *core.Registry, journal store.SessionStore, mailboxSize int, logger *zerolog.Logger) *Conn {
	return &Conn{
		id:          id,
		sessionID:   sessionID,
		kind:        kind,
		transport:   t,
		registry:    reg,
		journal:     journal,
		participant: core.NewParticipant(id, mailboxSize),
		log: logger.With().
			Str("client_id", id).
			Str("session_id", sessionID).
			Str("transport", kind).
			Logger(),
	}
}

// ID returns the peer identity.
func (c *Conn) ID() string {
	return c.id
}

// State returns the current lifecycle phase.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// Participant returns the registry-facing side of the connection.
func (c *Conn) Participant() *core.Participant {
	return c.participant
}

func (c *Conn) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		c.log.Debug().Stringer("from", prev).Stringer("to", s).Msg("state change")
	}
}

// Serve runs both activities to completion. It returns when the inbound
// stream has ended and the outbound side has drained or failed. The
// returned error is nil for a clean end of stream.
func (c *Conn) Serve(ctx context.Context) error {
	defer c.transport.Close()

	var ready sync.WaitGroup
	ready.Add(2)

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- c.writeLoop(ctx, &ready)
	}()

	readErr := c.readLoop(ctx, &ready)
	wErr := <-writeErr
	c.setState(StateClosed)

	return errors.Join(readErr, wErr)
}

// readLoop is the inbound activity.
func (c *Conn) readLoop(ctx context.Context, ready *sync.WaitGroup) error {
	ready.Done()
	ready.Wait()

	defer c.finishInbound()

	if c.registry.Register(c.participant) {
		c.setState(StateUnnamed)
		c.log.Info().Msg("client registered")
	}

	for {
		line, err := c.transport.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.handleLine(ctx, line)
	}
}

// finishInbound marks the inbound side done, wakes the outbound side and
// removes the participant from every registry index. Runs once on every
// exit path, panics included.
func (c *Conn) finishInbound() {
	c.finish.Do(func() {
		c.setState(StateClosing)
		c.participant.Mailbox().Close()
		c.registry.Deregister(c.participant)
		c.log.Info().Str("name", c.participant.Name()).Msg("client deregistered")
	})
}

// writeLoop is the outbound activity.
func (c *Conn) writeLoop(ctx context.Context, ready *sync.WaitGroup) error {
	ready.Done()
	ready.Wait()

	for _, line := range proto.Banner(c.id, core.DefaultRoom) {
		if err := c.write(ctx, line); err != nil {
			return outboundResult(err)
		}
	}

	for {
		msg, ok := c.participant.Mailbox().Next()
		if !ok {
			return nil
		}
		if err := c.write(ctx, msg); err != nil {
			return outboundResult(err)
		}
	}
}

// errTransportClosed stops the outbound activity once the transport is gone.
var errTransportClosed = errors.New("transport closed")

// outboundResult maps a write failure to the outbound activity's result. A
// closed transport is a normal end, not a fault.
func outboundResult(err error) error {
	if errors.Is(err, errTransportClosed) {
		return nil
	}
	return err
}

// write sends one line. A failed write closes the transport so the inbound
// activity stops as well.
func (c *Conn) write(ctx context.Context, line string) error {
	if err := c.transport.WriteLine(ctx, line); err != nil {
		_ = c.transport.Close()
		if errors.Is(err, net.ErrClosed) {
			return errTransportClosed
		}
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}

// reply queues a line for this connection only.
func (c *Conn) reply(msg string) {
	if err := c.participant.Mailbox().Offer(msg); err != nil {
		c.log.Warn().Err(err).Str("code", core.Code(err)).Msg("dropping reply")
	}
}

func (c *Conn) handleLine(ctx context.Context, line string) {
	if c.State() != StateNamed {
		c.claimName(ctx, line)
		return
	}

	cmd, err := proto.Parse(line)
	if err != nil {
		c.reply(err.Error())
		return
	}

	p := c.participant
	switch cmd.Kind {
	case proto.CommandChat:
		c.registry.BroadcastRooms(p, proto.FormatChat(p.Name(), cmd.Text))

	case proto.CommandSetName:
		if err := c.registry.SetName(p, cmd.Name); err != nil {
			c.replyError(err, proto.NameTaken(cmd.Name))
			return
		}
		c.reply(proto.NameChanged(cmd.Name))
		c.recordName(ctx, cmd.Name)

	case proto.CommandSendPrivate:
		if err := c.registry.SendPrivate(cmd.Target, proto.FormatPrivate(p.Name(), cmd.Text), p); err != nil {
			c.replyError(err, proto.UserNotFound(cmd.Target))
		}

	case proto.CommandJoin:
		if err := c.registry.JoinRoom(cmd.Room, p); err != nil {
			c.replyError(err, "")
			return
		}
		c.reply(proto.JoinedRoom(cmd.Room))

	case proto.CommandLeave:
		// Leaving a room one is not in is acknowledged the same way.
		if err := c.registry.LeaveRoom(cmd.Room, p); err != nil && !errors.Is(err, core.ErrNotInRoom) {
			c.replyError(err, "")
			return
		}
		c.reply(proto.LeftRoom(cmd.Room))

	case proto.CommandGroups:
		c.reply(proto.FormatRoomList(c.registry.RoomsOf(p)))

	case proto.CommandHelp:
		c.reply(proto.MsgHelp)

	default:
		c.reply(proto.MsgUnknownCommand)
	}
}

// claimName handles a line while the connection has no name yet. The
// line itself, or the argument of #setMyName, is the candidate name.
func (c *Conn) claimName(ctx context.Context, line string) {
	candidate := line
	if cmd, err := proto.Parse(line); cmd.Kind == proto.CommandSetName {
		if err != nil {
			c.reply(proto.MsgInvalidName)
			return
		}
		candidate = cmd.Name
	}

	if !proto.ValidName(candidate) {
		c.reply(proto.MsgInvalidName)
		return
	}

	if err := c.registry.SetName(c.participant, candidate); err != nil {
		c.replyError(err, proto.NameTakenRetry(candidate))
		return
	}

	c.setState(StateNamed)
	c.reply(proto.NameSet(candidate))
	c.recordName(ctx, candidate)
}

// replyError reports a failed registry operation to the caller. expected is
// the text for the operation's contention error; anything else is reported
// generically.
func (c *Conn) replyError(err error, expected string) {
	switch {
	case expected != "" && (errors.Is(err, core.ErrNameTaken) ||
		errors.Is(err, core.ErrUserNotFound)):
		c.reply(expected)
	default:
		c.log.Warn().Err(err).Str("code", core.Code(err)).Msg("registry operation failed")
		c.reply("Request failed: " + err.Error())
	}
}

func (c *Conn) recordName(ctx context.Context, name string) {
	c.log.Info().Str("name", name).Msg("name claimed")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := c.journal.RenameSession(ctx, c.sessionID, name); err != nil {
		c.log.Warn().Err(err).Msg("journal rename failed")
	}
}

const journalTimeout = 2 * time.Second
