// Package embedding turns text into fixed-dimension vectors. Three backends are
// available: a deterministic local hasher, a hosted OpenAI-compatible API, and a
// self-hosted OpenAI-compatible HTTP endpoint.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the vector length, or 0 until a remote model has answered once.
	Dimensions() int
	Kind() Kind
	Close() error
}

// Kind identifies the embedding backend. It is chosen once at startup.
type Kind int

const (
	// KindLocal hashes analyzed terms locally; no network.
	KindLocal Kind = iota
	// KindRemoteAPI calls a hosted embedding API with a bearer credential.
	KindRemoteAPI
	// KindLocalHTTP calls a caller-supplied endpoint without a credential.
	KindLocalHTTP
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemoteAPI:
		return "remote-api"
	case KindLocalHTTP:
		return "local-http"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrorKind classifies embedding failures.
type ErrorKind int

const (
	// ErrInvalidInput means the text was empty or blank.
	ErrInvalidInput ErrorKind = iota
	// ErrAuth means the endpoint rejected the credential (401/403).
	ErrAuth
	// ErrTransport means the request never completed: network failure, timeout, cancellation.
	ErrTransport
	// ErrProtocol means the endpoint answered with a non-2xx status or a payload without vectors.
	ErrProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidInput:
		return "invalid input"
	case ErrAuth:
		return "auth"
	case ErrTransport:
		return "transport"
	case ErrProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// ErrEmptyText is wrapped by every ErrInvalidInput error.
var ErrEmptyText = errors.New("text is empty")

// Error is returned by every Embedder on failure.
type Error struct {
	Kind     ErrorKind
	Provider Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding (%s): %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an embedding Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var embErr *Error
	return errors.As(err, &embErr) && embErr.Kind == kind
}

func newError(provider Kind, kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// embedEach calls embed for each text and fails on the first error.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}
