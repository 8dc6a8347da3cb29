package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/vectorpipe/internal/config"
	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/protocol"
	"github.com/hyperjump/vectorpipe/pkg/utils"
	"go.uber.org/zap"
)

// SessionStatus is the read-only view of the session the status API reports.
type SessionStatus interface {
	Stats() protocol.Stats
	Config() config.SessionConfig
}

// DimensionReporter reports the fixed vector dimension of the store.
type DimensionReporter interface {
	Dimensions() int
}

// StatusServer is the HTTP server for the read-only status API. It never
// mutates session state.
type StatusServer struct {
	addr       string
	session    SessionStatus
	store      DimensionReporter
	embedder   embedding.Embedder
	socketPath string
	started    time.Time
	logger     *zap.Logger
	server     *http.Server
}

// NewStatusServer creates a status server listening on addr.
func NewStatusServer(
	addr string,
	session SessionStatus,
	store DimensionReporter,
	embedder embedding.Embedder,
	socketPath string,
	logger *zap.Logger,
) *StatusServer {
	s := &StatusServer{
		addr:       addr,
		session:    session,
		store:      store,
		embedder:   embedder,
		socketPath: socketPath,
		started:    time.Now(),
		logger:     utils.OrNop(logger),
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *StatusServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)
	return r
}

// Start starts the HTTP server and blocks until it stops. A clean shutdown,
// including one that happens before Start, returns nil.
func (s *StatusServer) Start() error {
	s.logger.Info("Starting status server", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *StatusServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
