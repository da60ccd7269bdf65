package core

import "sync"

// DefaultMailboxSize is the number of undelivered lines a participant may
// have pending before new ones are dropped.
const DefaultMailboxSize = 20

// Mailbox is a bounded FIFO of outbound lines with an explicit close signal.
// Offers never block. The consumer observes close alongside dequeue.
type Mailbox struct {
	messages  chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewMailbox creates a mailbox holding at most size lines.
func NewMailbox(size int) *Mailbox {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	return &Mailbox{
		messages: make(chan string, size),
		done:     make(chan struct{}),
	}
}

// Offer enqueues msg without blocking. It returns ErrMailboxFull when the
// queue is at capacity and ErrMailboxClosed once Close has been called.
func (m *Mailbox) Offer(msg string) error {
	select {
	case <-m.done:
		return ErrMailboxClosed
	default:
	}

	select {
	case m.messages <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Next blocks until a line is available or the mailbox is closed. After
// Close it keeps returning already queued lines and reports false once the
// queue is empty.
func (m *Mailbox) Next() (string, bool) {
	select {
	case msg := <-m.messages:
		return msg, true
	case <-m.done:
		select {
		case msg := <-m.messages:
			return msg, true
		default:
			return "", false
		}
	}
}

// Close marks the producer side finished and wakes a blocked Next.
// Safe to call more than once.
func (m *Mailbox) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Len returns the number of queued lines.
func (m *Mailbox) Len() int {
	return len(m.messages)
}

// Cap returns the mailbox capacity.
func (m *Mailbox) Cap() int {
	return cap(m.messages)
}
