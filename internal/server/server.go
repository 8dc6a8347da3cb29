// Package server serves the line protocol over a unix domain socket and an
// optional read-only HTTP status API.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/vectorpipe/internal/protocol"
	"github.com/hyperjump/vectorpipe/pkg/utils"
	"go.uber.org/zap"
)

// ErrSocketInUse is returned when another live server already listens on the socket path.
var ErrSocketInUse = errors.New("socket already in use")

// Handler turns one request line into an optional reply line.
type Handler interface {
	Handle(ctx context.Context, line string) (reply string, ok bool)
}

// Server accepts exactly one connection on a unix socket and feeds its lines to
// a Handler, one request at a time.
type Server struct {
	path    string
	handler Handler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server for the socket at path.
func NewServer(path string, handler Handler, opts ...Option) *Server {
	s := &Server{path: path, handler: handler}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Listen binds the socket, removing a stale socket file left by a previous run.
// Serve calls it when the caller has not.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	if err := removeStaleSocket(s.path); err != nil {
		return err
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.path, err)
	}
	s.listener = ln
	s.logger.Info("Listening", zap.String("socket", s.path))
	return nil
}

// Serve accepts one client and runs the request loop until the client disconnects
// or ctx is cancelled. Both end the session without error.
func (s *Server) Serve(ctx context.Context) error {
	conn, err := s.acceptOne(ctx)
	if err != nil || conn == nil {
		return err
	}
	defer conn.Close()
	s.logger.Info("Client connected")

	err = s.serveConn(ctx, conn)
	if err == nil {
		s.logger.Info("Client disconnected")
	}
	return err
}

// ServeConfigError accepts one client, writes a single configuration error line
// and closes the connection without running the session.
func (s *Server) ServeConfigError(ctx context.Context, reason error) error {
	conn, err := s.acceptOne(ctx)
	if err != nil || conn == nil {
		return err
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(conn, protocol.ConfigErrorPrefix+reason.Error()+"\n"); err != nil {
		return fmt.Errorf("failed to write configuration error: %w", err)
	}
	return nil
}

// acceptOne waits for the single client. The listener is closed and the socket
// file removed once a client arrives or ctx is cancelled; a nil conn with a nil
// error means cancellation.
func (s *Server) acceptOne(ctx context.Context) (net.Conn, error) {
	if err := s.Listen(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	conn, err := ln.Accept()
	stop()
	s.closeListener()

	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}
	return conn, nil
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	for {
		line, readErr := reader.ReadString('\n')
		if readErr == nil || line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			s.logger.Debug("Request", zap.String("line", utils.Truncate(line, 80)))
			if reply, ok := s.handler.Handle(ctx, line); ok {
				if _, err := writer.WriteString(reply + "\n"); err != nil {
					return s.connError(ctx, "write", err)
				}
				if err := writer.Flush(); err != nil {
					return s.connError(ctx, "write", err)
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return s.connError(ctx, "read", readErr)
		}
	}
}

// connError suppresses errors caused by shutdown closing the connection.
func (s *Server) connError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Close releases the listener and removes the socket file.
func (s *Server) Close() error {
	s.closeListener()
	return nil
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return
	}
	_ = s.listener.Close()
	s.listener = nil
	_ = os.Remove(s.path)
}

// removeStaleSocket deletes a socket file nobody is listening on. A live
// socket yields ErrSocketInUse; a non-socket file is left alone.
func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat socket path: %w", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	if conn, err := net.DialTimeout("unix", path, time.Second); err == nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %s", ErrSocketInUse, path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}
