package session

import "context"

// Transport is a duplex line stream handed over by an accept loop.
// ReadLine returns io.EOF at end of stream. Close must be safe to call
// more than once and must unblock a pending ReadLine.
type Transport interface {
	ReadLine(ctx context.Context) (string, error)
	WriteLine(ctx context.Context, line string) error
	Close() error
}
