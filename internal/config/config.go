// Package config provides configuration loading and structs for the vectorpipe server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Socket    SocketConfig    `yaml:"socket"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Status    StatusConfig    `yaml:"status"`
}

// SocketConfig holds the unix socket the session is served on.
type SocketConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	// Source uses the same grammar as the third positional argument:
	// blank = local, http(s) URL = self-hosted endpoint, anything else = API credential.
	Source            string  `yaml:"source"`
	Dimensions        int     `yaml:"dimensions"`
	RemoteModel       string  `yaml:"remote_model"`
	RemoteBaseURL     string  `yaml:"remote_base_url"`
	LocalHTTPModel    string  `yaml:"local_http_model"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	CacheSize         int     `yaml:"cache_size"` // negative disables the cache
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Timeout returns the request timeout as a duration.
func (e *EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// SearchConfig holds the session defaults that positional arguments override.
type SearchConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	DefaultThreshold float64 `yaml:"default_threshold"`
}

// StatusConfig holds the read-only status HTTP server settings.
// An empty Host disables the server.
type StatusConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Enabled reports whether the status server should run.
func (s *StatusConfig) Enabled() bool {
	return s.Host != ""
}

// Addr returns host:port for the status listener.
func (s *StatusConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Socket.Path != "" {
		cfg.Socket.Path = expandPath(cfg.Socket.Path, filepath.Dir(path))
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadOrDefault loads path when it is set and exists; otherwise it returns the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		cfg, err := Load(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
