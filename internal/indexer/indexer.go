package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/models"
	"github.com/hyperjump/vectorpipe/internal/vector"
	"github.com/hyperjump/vectorpipe/pkg/utils"
	"go.uber.org/zap"
)

// ErrNoText is returned by Ingest when the input contains no non-empty segment.
var ErrNoText = errors.New("no text provided")

// IngestResult counts what happened to each segment of an ingest call.
type IngestResult struct {
	Segments int // non-empty segments found
	Added    int // segments embedded and stored
	Failed   int // segments skipped after an embedding or store error
}

// Indexer embeds sentence segments and appends them to a vector store.
type Indexer struct {
	store    *vector.Store
	embedder embedding.Embedder
	logger   *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for per-segment events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer writing to store.
func NewIndexer(store *vector.Store, embedder embedding.Embedder, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:    store,
		embedder: embedder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = utils.OrNop(idx.logger)
	return idx
}

// Ingest splits raw into segments and stores each one that embeds successfully.
// A segment that fails is logged and skipped; the remaining segments are still
// processed. ErrNoText is returned only when raw has no segments at all.
// Cancellation stops ingestion early and returns the context error with the
// counts so far.
func (idx *Indexer) Ingest(ctx context.Context, raw string) (IngestResult, error) {
	segments := SplitSentences(raw)
	result := IngestResult{Segments: len(segments)}
	if len(segments) == 0 {
		return result, ErrNoText
	}

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("ingest interrupted after %d of %d segments: %w", i, len(segments), err)
		}
		vec, err := idx.embedder.Embed(ctx, seg)
		if err != nil {
			result.Failed++
			idx.logger.Warn("Skipping segment: embedding failed",
				zap.String("segment", utils.Truncate(seg, 60)),
				zap.Error(err))
			continue
		}
		entry := models.NewEntry(seg, vec)
		if err := idx.store.Add(entry); err != nil {
			result.Failed++
			idx.logger.Warn("Skipping segment: store rejected entry",
				zap.String("segment", utils.Truncate(seg, 60)),
				zap.Error(err))
			continue
		}
		result.Added++
		idx.logger.Debug("Segment indexed",
			zap.String("id", entry.ID),
			zap.Int("dimensions", entry.Dimensions()),
			zap.Bool("zero_vector", utils.IsZero(vec)))
	}

	idx.logger.Info("Ingest complete",
		zap.Int("segments", result.Segments),
		zap.Int("added", result.Added),
		zap.Int("failed", result.Failed),
		zap.Int("total_entries", idx.store.Size()))
	return result, nil
}

// Store returns the store the indexer writes to.
func (idx *Indexer) Store() *vector.Store {
	return idx.store
}
