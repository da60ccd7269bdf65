package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/vovakirdan/linechat/internal/proto"
)

// lineConn frames a net.Conn into text lines. Reads accept "\n" or "\r\n";
// writes append "\r\n" and flush.
type lineConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writer       *bufio.Writer
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

func newLineConn(conn net.Conn, maxLineBytes int, writeTimeout time.Duration) *lineConn {
	scanner := bufio.NewScanner(conn)
	if maxLineBytes > 0 {
		scanner.Buffer(make([]byte, 0, min(maxLineBytes, 4096)), maxLineBytes)
	}
	return &lineConn{
		conn:         conn,
		scanner:      scanner,
		writer:       bufio.NewWriter(conn),
		writeTimeout: writeTimeout,
	}
}

func (c *lineConn) ReadLine(_ context.Context) (string, error) {
	if c.scanner.Scan() {
		return c.scanner.Text(), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (c *lineConn) WriteLine(_ context.Context, line string) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	if _, err := c.writer.WriteString(line + proto.LineTerminator); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *lineConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
