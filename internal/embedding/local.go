package embedding

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/hyperjump/vectorpipe/pkg/utils"
)

// DefaultLocalDimensions is the vector length of the local embedder when none is configured.
const DefaultLocalDimensions = 512

// LocalEmbedder is a deterministic, offline embedder. Each analyzed term is
// feature-hashed into a bucket; the term-frequency vector is L2-normalized so
// cosine similarity reflects shared vocabulary. The same text always yields the
// same vector.
type LocalEmbedder struct {
	dimensions int
	terms      *TermAnalyzer
}

// NewLocalEmbedder returns a local embedder producing vectors of the given dimensions.
func NewLocalEmbedder(dimensions int) (*LocalEmbedder, error) {
	if dimensions <= 0 {
		dimensions = DefaultLocalDimensions
	}
	terms, err := NewTermAnalyzer()
	if err != nil {
		return nil, err
	}
	return &LocalEmbedder{dimensions: dimensions, terms: terms}, nil
}

// Embed returns the hashed term vector for text.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newError(KindLocal, ErrInvalidInput, ErrEmptyText)
	}
	emb := make([]float32, e.dimensions)
	for _, term := range e.terms.Terms(text) {
		emb[bucket(term, e.dimensions)]++
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *LocalEmbedder) Dimensions() int {
	return e.dimensions
}

// Kind returns KindLocal.
func (e *LocalEmbedder) Kind() Kind {
	return KindLocal
}

// Close is a no-op for LocalEmbedder.
func (e *LocalEmbedder) Close() error {
	return nil
}

func bucket(term string, dimensions int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return int(h.Sum32() % uint32(dimensions))
}
