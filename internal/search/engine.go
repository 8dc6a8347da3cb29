// Package search answers similarity queries against the vector store.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/models"
	"github.com/hyperjump/vectorpipe/internal/vector"
	"github.com/hyperjump/vectorpipe/pkg/utils"
	"go.uber.org/zap"
)

// Engine runs brute-force semantic search.
type Engine struct {
	store    *vector.Store
	embedder embedding.Embedder
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for query timing and failures.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a search engine over store.
func NewEngine(store *vector.Store, embedder embedding.Embedder, opts ...EngineOption) *Engine {
	e := &Engine{store: store, embedder: embedder}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// Search embeds the query once and returns up to query.Limit matches ordered by
// descending cosine similarity, ties in insertion order. When query.MinScore is
// positive, matches scoring below it are dropped. An empty store or no match
// over the threshold yields an empty slice. If the query cannot be embedded the
// result is empty and the error is returned.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) ([]models.Match, error) {
	startTime := time.Now()
	if err := ProcessQuery(query); err != nil {
		return []models.Match{}, err
	}
	if e.store.Size() == 0 {
		return []models.Match{}, nil
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		e.logger.Warn("Query embedding failed",
			zap.String("query", utils.Truncate(query.Query, 60)),
			zap.Error(err))
		return []models.Match{}, fmt.Errorf("embedding failed: %w", err)
	}

	matches, err := e.store.Search(ctx, queryEmbedding, query.Limit, query.MinScore)
	if err != nil {
		return []models.Match{}, fmt.Errorf("vector search failed: %w", err)
	}

	e.logger.Debug("Search complete",
		zap.String("query", utils.Truncate(query.Query, 60)),
		zap.Int("matches", len(matches)),
		zap.Bool("threshold_active", query.ThresholdActive()),
		zap.Int("entries", e.store.Size()),
		zap.Duration("elapsed", time.Since(startTime)))
	return matches, nil
}
