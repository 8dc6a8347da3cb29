package embedding

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Source is the parsed embedding-source argument.
type Source struct {
	Kind    Kind
	APIKey  string // KindRemoteAPI only
	BaseURL string // KindLocalHTTP only, already normalized
}

// String describes the source without revealing the credential.
func (s Source) String() string {
	switch s.Kind {
	case KindLocalHTTP:
		return fmt.Sprintf("%s (%s)", s.Kind, s.BaseURL)
	default:
		return s.Kind.String()
	}
}

// ParseSource interprets the embedding-source argument: blank selects the local
// embedder, a value starting with "http" (any case) selects a self-hosted
// endpoint, anything else is a credential for the hosted API.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Source{Kind: KindLocal}, nil
	case strings.HasPrefix(strings.ToLower(raw), "http"):
		base, err := DeriveBaseURL(raw)
		if err != nil {
			return Source{Kind: KindLocalHTTP}, err
		}
		return Source{Kind: KindLocalHTTP, BaseURL: base}, nil
	default:
		return Source{Kind: KindRemoteAPI, APIKey: raw}, nil
	}
}

// DeriveBaseURL turns a user-supplied endpoint into the client base URL. A
// trailing "/embeddings" is stripped and a bare host gets "/v1", so
// "http://localhost:1234", "http://localhost:1234/v1" and
// "http://localhost:1234/v1/embeddings" all resolve to "http://localhost:1234/v1".
func DeriveBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid embedding URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid embedding URL %q: expected http(s)://host[:port][/path]", raw)
	}
	path := strings.TrimRight(u.Path, "/")
	path = strings.TrimSuffix(path, "/embeddings")
	if path == "" {
		path = "/v1"
	}
	u.Path = path
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Options tune the embedder built by New.
type Options struct {
	Dimensions        int // local only
	RemoteModel       string
	RemoteBaseURL     string
	LocalHTTPModel    string
	Timeout           time.Duration
	CacheSize         int     // 0 disables caching
	RequestsPerSecond float64 // 0 disables rate limiting; HTTP backends only
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// New builds the embedder for src. HTTP backends are optionally rate limited,
// and any backend is optionally wrapped in an LRU cache.
func New(src Source, opts Options) (Embedder, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var emb Embedder
	switch src.Kind {
	case KindLocal:
		local, err := NewLocalEmbedder(opts.Dimensions)
		if err != nil {
			return nil, err
		}
		emb = local
	case KindRemoteAPI, KindLocalHTTP:
		cfg := OpenAIConfig{
			Kind:       src.Kind,
			Timeout:    opts.Timeout,
			HTTPClient: opts.HTTPClient,
		}
		if src.Kind == KindRemoteAPI {
			cfg.APIKey = src.APIKey
			cfg.BaseURL = opts.RemoteBaseURL
			cfg.Model = opts.RemoteModel
		} else {
			cfg.BaseURL = src.BaseURL
			cfg.Model = opts.LocalHTTPModel
		}
		remote, err := NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		emb = remote
		if opts.RequestsPerSecond > 0 {
			emb = NewRateLimitedEmbedder(emb, opts.RequestsPerSecond, 1)
		}
		logger.Info("Using HTTP embedding backend",
			zap.Stringer("kind", src.Kind),
			zap.String("model", remote.Model()))
	default:
		return nil, fmt.Errorf("unknown embedding kind: %s", src.Kind)
	}

	if opts.CacheSize > 0 {
		emb = NewCachedEmbedder(emb, opts.CacheSize)
	}
	return emb, nil
}
