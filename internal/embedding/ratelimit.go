package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder spaces out requests to a remote embedder. Each Embed or
// EmbedBatch call takes one token.
type RateLimitedEmbedder struct {
	Embedder
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder allows rps requests per second with the given burst.
func NewRateLimitedEmbedder(inner Embedder, rps float64, burst int) *RateLimitedEmbedder {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{
		Embedder: inner,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, newError(e.Kind(), ErrTransport, err)
	}
	return e.Embedder.Embed(ctx, text)
}

func (e *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, newError(e.Kind(), ErrTransport, err)
	}
	return e.Embedder.EmbedBatch(ctx, texts)
}
