// Package client talks to a running vectorpipe server over its unix socket.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/vectorpipe/internal/protocol"
)

// ErrMultiline is returned when a request contains a line break.
var ErrMultiline = errors.New("request must be a single line")

// Client is a line client for one session. It is not safe for concurrent use.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the socket at path.
func Dial(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close closes the connection, which ends the server session.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send writes line and waits for the reply line.
func (c *Client) Send(ctx context.Context, line string) (string, error) {
	if err := c.Write(ctx, line); err != nil {
		return "", err
	}
	return c.ReadReply(ctx)
}

// Write sends a line that produces no reply, such as the update command or a blank line.
func (c *Client) Write(ctx context.Context, line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return ErrMultiline
	}
	defer c.bind(ctx)()
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}
	return nil
}

// ReadReply reads one reply line.
func (c *Client) ReadReply(ctx context.Context) (string, error) {
	defer c.bind(ctx)()
	reply, err := c.reader.ReadString('\n')
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if _, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) {
			return "", context.DeadlineExceeded
		}
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(reply, "\n"), "\r"), nil
}

// Init sends the initialization text.
func (c *Client) Init(ctx context.Context, text string) (string, error) {
	return c.Send(ctx, text)
}

// Update appends text to the database.
func (c *Client) Update(ctx context.Context, text string) (string, error) {
	if err := c.Write(ctx, protocol.UpdateCommand); err != nil {
		return "", err
	}
	return c.Send(ctx, text)
}

// Search returns the raw reply for query.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	return c.Send(ctx, query)
}

// bind applies ctx's deadline to the connection and interrupts blocked I/O on
// cancellation. The returned func undoes both.
func (c *Client) bind(ctx context.Context) func() {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		stop()
		_ = c.conn.SetDeadline(time.Time{})
	}
}
