package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/protocol"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Session             protocol.Stats `json:"session"`
	Dimensions          int            `json:"dimensions"`
	Provider            string         `json:"provider"`
	ResultLimit         int            `json:"result_limit"`
	SimilarityThreshold float64        `json:"similarity_threshold"`
	Socket              string         `json:"socket"`
	Uptime              string         `json:"uptime"`
	Cache               *CacheStatus   `json:"cache,omitempty"`
}

// CacheStatus reports embedding cache usage.
type CacheStatus struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.session.Config()
	resp := StatusResponse{
		Session:             s.session.Stats(),
		Dimensions:          s.store.Dimensions(),
		Provider:            s.embedder.Kind().String(),
		ResultLimit:         cfg.ResultLimit,
		SimilarityThreshold: cfg.SimilarityThreshold,
		Socket:              s.socketPath,
		Uptime:              time.Since(s.started).Round(time.Second).String(),
	}
	if cached, ok := s.embedder.(*embedding.CachedEmbedder); ok {
		hits, misses := cached.Cache().Stats()
		resp.Cache = &CacheStatus{Entries: cached.Cache().Len(), Hits: hits, Misses: misses}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *StatusServer) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
