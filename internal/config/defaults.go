package config

import (
	"os"
	"path/filepath"
)

const (
	// SocketName is the well-known endpoint name clients connect to.
	SocketName = "VectorPipe"

	DefaultResultLimit    = 5
	DefaultDimensions     = 512
	DefaultRemoteModel    = "text-embedding-3-small"
	DefaultRemoteBaseURL  = "https://api.openai.com/v1"
	DefaultLocalHTTPModel = "text-embedding-nomic-embed-text-v1.5"
	DefaultTimeoutSeconds = 30
	DefaultCacheSize      = 1024
	DefaultStatusPort     = 8090
)

// DefaultSocketPath returns $TMPDIR/VectorPipe.
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), SocketName)
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Socket.Path == "" {
		cfg.Socket.Path = DefaultSocketPath()
	}
	if cfg.Embedding.Dimensions <= 0 {
		cfg.Embedding.Dimensions = DefaultDimensions
	}
	if cfg.Embedding.RemoteModel == "" {
		cfg.Embedding.RemoteModel = DefaultRemoteModel
	}
	if cfg.Embedding.RemoteBaseURL == "" {
		cfg.Embedding.RemoteBaseURL = DefaultRemoteBaseURL
	}
	if cfg.Embedding.LocalHTTPModel == "" {
		cfg.Embedding.LocalHTTPModel = DefaultLocalHTTPModel
	}
	if cfg.Embedding.TimeoutSeconds <= 0 {
		cfg.Embedding.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = DefaultCacheSize
	}
	if cfg.Embedding.RequestsPerSecond < 0 {
		cfg.Embedding.RequestsPerSecond = 0
	}
	if cfg.Search.DefaultLimit < 1 {
		cfg.Search.DefaultLimit = DefaultResultLimit
	}
	if cfg.Status.Port == 0 {
		cfg.Status.Port = DefaultStatusPort
	}
}
