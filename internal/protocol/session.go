// Package protocol implements the line-oriented session: the first non-blank
// line initializes the database, "Update" arms an append of the next line, and
// every other line is a similarity query.
package protocol

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/hyperjump/vectorpipe/internal/config"
	"github.com/hyperjump/vectorpipe/internal/indexer"
	"github.com/hyperjump/vectorpipe/internal/models"
	"github.com/hyperjump/vectorpipe/pkg/utils"
	"go.uber.org/zap"
)

// Replies written back to the client.
const (
	ReplyInitialized    = "Vector database initialized."
	ReplyNoInitText     = "No text provided for initialization."
	ReplyUpdated        = "Vector database updated."
	ReplyNoUpdateText   = "No text provided for update."
	ReplyNoResults      = "No results."
	ReplySearchError    = "Error during search."
	ReplyNotInitialized = "Database not initialized."

	// ConfigErrorPrefix starts the single line written when the server cannot run a session.
	ConfigErrorPrefix = "Configuration error: "
)

// UpdateCommand arms an update when sent on its own line (case-insensitive).
const UpdateCommand = "Update"

// State is the session lifecycle. It only moves from AwaitingInit to Ready.
type State int32

const (
	AwaitingInit State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case AwaitingInit:
		return "awaiting_init"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Ingester appends text to the database.
type Ingester interface {
	Ingest(ctx context.Context, raw string) (indexer.IngestResult, error)
}

// Searcher answers similarity queries.
type Searcher interface {
	Search(ctx context.Context, query *models.SearchQuery) ([]models.Match, error)
}

// Counter reports the number of stored entries.
type Counter interface {
	Size() int
}

// Stats is a point-in-time view of session activity.
type Stats struct {
	State    string `json:"state"`
	Entries  int    `json:"entries"`
	Searches uint64 `json:"searches"`
	Updates  uint64 `json:"updates"`
}

// Session classifies incoming lines and produces replies. Handle must be called
// from a single goroutine; State, Entries and Stats are safe to call concurrently.
type Session struct {
	ingester Ingester
	searcher Searcher
	counter  Counter
	cfg      config.SessionConfig
	logger   *zap.Logger

	state         atomic.Int32
	pendingUpdate bool
	searches      atomic.Uint64
	updates       atomic.Uint64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session in AwaitingInit.
func NewSession(ingester Ingester, searcher Searcher, counter Counter, cfg config.SessionConfig, opts ...SessionOption) *Session {
	if cfg.ResultLimit < 1 {
		cfg.ResultLimit = config.DefaultResultLimit
	}
	s := &Session{
		ingester: ingester,
		searcher: searcher,
		counter:  counter,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// Handle processes one line, already stripped of its terminator. ok is false
// when the line produces no reply.
func (s *Session) Handle(ctx context.Context, line string) (reply string, ok bool) {
	if s.State() == AwaitingInit {
		if utils.IsBlank(line) {
			return "", false
		}
		return s.initialize(ctx, line), true
	}

	if s.pendingUpdate {
		s.pendingUpdate = false
		return s.update(ctx, line), true
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case strings.EqualFold(trimmed, UpdateCommand):
		s.pendingUpdate = true
		s.logger.Debug("Update armed")
		return "", false
	case trimmed == "":
		return "", false
	default:
		return s.Query(ctx, trimmed), true
	}
}

func (s *Session) initialize(ctx context.Context, raw string) string {
	res, err := s.ingester.Ingest(ctx, raw)
	if errors.Is(err, indexer.ErrNoText) {
		return ReplyNoInitText
	}
	if err != nil {
		s.logger.Warn("Initialization incomplete", zap.Error(err))
	}
	s.state.Store(int32(Ready))
	s.logger.Info("Vector database initialized",
		zap.Int("segments", res.Segments),
		zap.Int("added", res.Added),
		zap.Int("failed", res.Failed))
	return ReplyInitialized
}

func (s *Session) update(ctx context.Context, raw string) string {
	res, err := s.ingester.Ingest(ctx, raw)
	if errors.Is(err, indexer.ErrNoText) {
		return ReplyNoUpdateText
	}
	if err != nil {
		s.logger.Warn("Update incomplete", zap.Error(err))
	}
	s.updates.Add(1)
	s.logger.Info("Vector database updated",
		zap.Int("added", res.Added),
		zap.Int("failed", res.Failed),
		zap.Int("entries", s.Entries()))
	return ReplyUpdated
}

// Query runs a similarity search with the session limit and threshold and
// formats the reply line.
func (s *Session) Query(ctx context.Context, text string) string {
	if s.State() != Ready {
		return ReplyNotInitialized
	}
	s.searches.Add(1)
	matches, err := s.searcher.Search(ctx, &models.SearchQuery{
		Query:    text,
		Limit:    s.cfg.ResultLimit,
		MinScore: s.cfg.SimilarityThreshold,
	})
	if err != nil {
		s.logger.Error("Search failed", zap.String("query", utils.Truncate(text, 60)), zap.Error(err))
		return ReplySearchError
	}
	return FormatMatches(matches)
}

// FormatMatches joins match texts with single spaces, each ending in exactly one
// period. No matches yields ReplyNoResults.
func FormatMatches(matches []models.Match) string {
	parts := make([]string, 0, len(matches))
	for _, text := range models.Texts(matches) {
		if p := utils.EnsurePeriod(text); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ReplyNoResults
	}
	return strings.Join(parts, " ")
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Entries returns the number of stored entries.
func (s *Session) Entries() int {
	return s.counter.Size()
}

// Config returns the immutable session settings.
func (s *Session) Config() config.SessionConfig {
	return s.cfg
}

// Stats returns a snapshot of session activity.
func (s *Session) Stats() Stats {
	return Stats{
		State:    s.State().String(),
		Entries:  s.Entries(),
		Searches: s.searches.Load(),
		Updates:  s.updates.Load(),
	}
}
