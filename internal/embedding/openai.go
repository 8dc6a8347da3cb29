package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultRemoteModel is the hosted embedding model used with a credential.
	DefaultRemoteModel = string(openai.SmallEmbedding3)
	// DefaultRemoteBaseURL is the hosted API base URL.
	DefaultRemoteBaseURL = "https://api.openai.com/v1"
	// DefaultLocalHTTPModel is the model requested from self-hosted inference servers.
	DefaultLocalHTTPModel = "text-embedding-nomic-embed-text-v1.5"
	// DefaultTimeout bounds every outbound embedding request.
	DefaultTimeout = 30 * time.Second
)

// OpenAIConfig configures an OpenAIEmbedder.
type OpenAIConfig struct {
	Kind       Kind // KindRemoteAPI or KindLocalHTTP
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; defaults to a client with Timeout
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. With KindRemoteAPI
// it sends the credential as a bearer token; with KindLocalHTTP no Authorization
// header is sent. Requests are never retried.
type OpenAIEmbedder struct {
	client     *openai.Client
	kind       Kind
	model      string
	timeout    time.Duration
	dimensions atomic.Int64
}

// NewOpenAIEmbedder validates cfg and builds the client.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	model := cfg.Model
	switch cfg.Kind {
	case KindRemoteAPI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("remote embedding API requires a credential")
		}
		if baseURL == "" {
			baseURL = DefaultRemoteBaseURL
		}
		if model == "" {
			model = DefaultRemoteModel
		}
	case KindLocalHTTP:
		if baseURL == "" {
			return nil, fmt.Errorf("local HTTP embedding requires a base URL")
		}
		if model == "" {
			model = DefaultLocalHTTPModel
		}
	default:
		return nil, fmt.Errorf("unsupported embedding kind for HTTP client: %s", cfg.Kind)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	apiKey := ""
	if cfg.Kind == KindRemoteAPI {
		apiKey = cfg.APIKey
	}
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else {
		clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		kind:    cfg.Kind,
		model:   model,
		timeout: timeout,
	}, nil
}

// Embed returns the embedding of a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request. The i-th result corresponds to texts[i].
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, newError(e.kind, ErrInvalidInput, errors.New("no texts provided for embedding"))
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, newError(e.kind, ErrInvalidInput, ErrEmptyText)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, e.classify(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, newError(e.kind, ErrProtocol, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) || vectors[data.Index] != nil {
			return nil, newError(e.kind, ErrProtocol, fmt.Errorf("unexpected embedding index %d", data.Index))
		}
		if len(data.Embedding) == 0 {
			return nil, newError(e.kind, ErrProtocol, fmt.Errorf("embedding %d has no vector", data.Index))
		}
		vectors[data.Index] = data.Embedding
	}
	e.dimensions.Store(int64(len(vectors[0])))
	return vectors, nil
}

// classify maps client errors onto the embedding error taxonomy.
func (e *OpenAIEmbedder) classify(err error) error {
	status := 0
	var reqErr *openai.RequestError
	var apiErr *openai.APIError
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(e.kind, ErrAuth, err)
	case status != 0:
		return newError(e.kind, ErrProtocol, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return newError(e.kind, ErrTransport, err)
	}
	return newError(e.kind, ErrProtocol, err)
}

// Dimensions returns the length of the last vector received, or 0 before the first call.
func (e *OpenAIEmbedder) Dimensions() int {
	return int(e.dimensions.Load())
}

// Kind returns KindRemoteAPI or KindLocalHTTP.
func (e *OpenAIEmbedder) Kind() Kind {
	return e.kind
}

// Model returns the requested model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Close is a no-op; the HTTP client holds no per-embedder resources.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
