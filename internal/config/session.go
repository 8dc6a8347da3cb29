package config

import (
	"math"
	"strconv"
	"strings"
)

// SessionConfig holds the per-process search settings. It is immutable once built.
type SessionConfig struct {
	ResultLimit         int     // >= 1
	SimilarityThreshold float64 // <= 0 disables filtering
}

// Session returns the session settings from the config file defaults.
func (c *Config) Session() SessionConfig {
	limit := c.Search.DefaultLimit
	if limit < 1 {
		limit = DefaultResultLimit
	}
	return SessionConfig{ResultLimit: limit, SimilarityThreshold: c.Search.DefaultThreshold}
}

// ParseArgs applies the positional startup arguments on top of base:
//
//	[similarityThreshold [resultLimit [embeddingSource]]]
//
// Unparsable numbers keep the base value, a limit below 1 keeps the base limit,
// and the returned source is the third argument when present (blank included)
// or defaultSource otherwise. sourceSet reports whether the third argument was given.
func ParseArgs(args []string, base SessionConfig, defaultSource string) (cfg SessionConfig, source string, sourceSet bool) {
	cfg = base
	source = defaultSource
	if cfg.ResultLimit < 1 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if len(args) > 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			cfg.SimilarityThreshold = v
		}
	}
	if len(args) > 1 {
		if v, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil && v >= 1 {
			cfg.ResultLimit = v
		}
	}
	if len(args) > 2 {
		source = args[2]
		sourceSet = true
	}
	return cfg, source, sourceSet
}

// ThresholdActive reports whether results below SimilarityThreshold are dropped.
func (s SessionConfig) ThresholdActive() bool {
	return s.SimilarityThreshold > 0
}
