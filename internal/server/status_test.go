package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/vectorpipe/internal/config"
	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/indexer"
	"github.com/hyperjump/vectorpipe/internal/protocol"
	"github.com/hyperjump/vectorpipe/internal/search"
	"github.com/hyperjump/vectorpipe/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusServer_Health(t *testing.T) {
	stack := newTestStack(t, config.SessionConfig{})
	srv := NewStatusServer("127.0.0.1:0", stack.session, stack.store, stack.embedder, "/tmp/VectorPipe", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusServer_Status(t *testing.T) {
	stack := newTestStack(t, config.SessionConfig{ResultLimit: 3, SimilarityThreshold: 0.2})
	srv := NewStatusServer("127.0.0.1:0", stack.session, stack.store, stack.embedder, "/tmp/VectorPipe", nil)

	ctx := context.Background()
	_, ok := stack.session.Handle(ctx, "Cats are mammals. Dogs are mammals.")
	require.True(t, ok)
	_, ok = stack.session.Handle(ctx, "cats")
	require.True(t, ok)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Session.State)
	assert.Equal(t, 2, resp.Session.Entries)
	assert.Equal(t, uint64(1), resp.Session.Searches)
	assert.Equal(t, 512, resp.Dimensions)
	assert.Equal(t, "local", resp.Provider)
	assert.Equal(t, 3, resp.ResultLimit)
	assert.Equal(t, 0.2, resp.SimilarityThreshold)
	assert.Equal(t, "/tmp/VectorPipe", resp.Socket)
	assert.Nil(t, resp.Cache)
}

func TestStatusServer_CacheStats(t *testing.T) {
	local, err := embedding.NewLocalEmbedder(64)
	require.NoError(t, err)
	emb := embedding.NewCachedEmbedder(local, 16)
	store := vector.NewStore()
	session := protocol.NewSession(indexer.NewIndexer(store, emb), search.NewEngine(store, emb), store, config.SessionConfig{})
	srv := NewStatusServer("127.0.0.1:0", session, store, emb, "", nil)

	ctx := context.Background()
	session.Handle(ctx, "Cats are mammals")
	session.Handle(ctx, "Cats are mammals")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Cache)
	assert.Equal(t, 1, resp.Cache.Entries)
	assert.Equal(t, uint64(1), resp.Cache.Hits)
	assert.Equal(t, uint64(1), resp.Cache.Misses)
}

func TestStatusServer_StopBeforeStart(t *testing.T) {
	stack := newTestStack(t, config.SessionConfig{})
	srv := NewStatusServer("127.0.0.1:0", stack.session, stack.store, stack.embedder, "", nil)
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestStatusServer_UnknownRoute(t *testing.T) {
	stack := newTestStack(t, config.SessionConfig{})
	srv := NewStatusServer("127.0.0.1:0", stack.session, stack.store, stack.embedder, "", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
