package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/vectorpipe/internal/config"
	"github.com/hyperjump/vectorpipe/internal/embedding"
	"github.com/hyperjump/vectorpipe/internal/indexer"
	"github.com/hyperjump/vectorpipe/internal/models"
	"github.com/hyperjump/vectorpipe/internal/search"
	"github.com/hyperjump/vectorpipe/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSession(t *testing.T, cfg config.SessionConfig) (*Session, *vector.Store) {
	t.Helper()
	emb, err := embedding.NewLocalEmbedder(512)
	require.NoError(t, err)
	store := vector.NewStore()
	logger := zaptest.NewLogger(t)
	idx := indexer.NewIndexer(store, emb, indexer.WithLogger(logger))
	engine := search.NewEngine(store, emb, search.WithLogger(logger))
	return NewSession(idx, engine, store, cfg, WithLogger(logger)), store
}

func mustReply(t *testing.T, s *Session, line string) string {
	t.Helper()
	reply, ok := s.Handle(context.Background(), line)
	require.True(t, ok, "expected a reply for %q", line)
	return reply
}

func mustBeSilent(t *testing.T, s *Session, line string) {
	t.Helper()
	reply, ok := s.Handle(context.Background(), line)
	require.False(t, ok, "expected no reply for %q, got %q", line, reply)
}

func TestSession_Scenario(t *testing.T) {
	s, store := newTestSession(t, config.SessionConfig{ResultLimit: 3})

	assert.Equal(t, AwaitingInit, s.State())
	assert.Equal(t, ReplyInitialized, mustReply(t, s, "Cats are mammals. Dogs are mammals. Paris is a city."))
	assert.Equal(t, Ready, s.State())
	assert.Equal(t, 3, store.Size())

	reply := mustReply(t, s, "Tell me about pets")
	assert.Equal(t, "Cats are mammals. Dogs are mammals. Paris is a city.", reply)

	mustBeSilent(t, s, "Update")
	assert.Equal(t, ReplyUpdated, mustReply(t, s, "Birds can fly."))
	assert.Equal(t, 4, s.Entries())
	assert.Equal(t, Ready, s.State())
}

func TestSession_BlankLinesBeforeInit(t *testing.T) {
	s, _ := newTestSession(t, config.SessionConfig{})

	mustBeSilent(t, s, "")
	mustBeSilent(t, s, "   \t")
	assert.Equal(t, AwaitingInit, s.State())
	assert.Equal(t, ReplyInitialized, mustReply(t, s, "Hello there."))
}

func TestSession_InitWithoutSegments(t *testing.T) {
	s, store := newTestSession(t, config.SessionConfig{})

	assert.Equal(t, ReplyNoInitText, mustReply(t, s, " . . "))
	assert.Equal(t, AwaitingInit, s.State())
	assert.Equal(t, 0, store.Size())

	assert.Equal(t, ReplyInitialized, mustReply(t, s, "Now with text."))
	assert.Equal(t, Ready, s.State())
}

func TestSession_UpdateAsFirstLineIsInitContent(t *testing.T) {
	s, store := newTestSession(t, config.SessionConfig{})

	assert.Equal(t, ReplyInitialized, mustReply(t, s, "Update"))
	require.Equal(t, 1, store.Size())
	assert.Equal(t, "Update", store.Entries()[0].Text)
}

func TestSession_UpdateWithBlankPayload(t *testing.T) {
	s, store := newTestSession(t, config.SessionConfig{})
	mustReply(t, s, "Cats are mammals.")
	before := store.Size()

	mustBeSilent(t, s, "Update")
	assert.Equal(t, ReplyNoUpdateText, mustReply(t, s, ""))
	assert.Equal(t, before, store.Size())

	// The pending flag is consumed; a blank line is skipped again.
	mustBeSilent(t, s, "")
}

func TestSession_UpdateCaseInsensitive(t *testing.T) {
	s, store := newTestSession(t, config.SessionConfig{})
	mustReply(t, s, "Cats are mammals.")

	for _, cmd := range []string{"update", "  UPDATE  ", "uPdAtE"} {
		before := store.Size()
		mustBeSilent(t, s, cmd)
		assert.Equal(t, ReplyUpdated, mustReply(t, s, "Another fact. And one more"))
		assert.Equal(t, before+2, store.Size())
	}
}

func TestSession_UpdatePayloadIsNotACommand(t *testing.T) {
	s, store := newTestSession(t, config.SessionConfig{})
	mustReply(t, s, "Cats are mammals.")

	mustBeSilent(t, s, "Update")
	assert.Equal(t, ReplyUpdated, mustReply(t, s, "Update"))
	assert.Equal(t, 2, store.Size())
}

func TestSession_NoResultsOverThreshold(t *testing.T) {
	s, _ := newTestSession(t, config.SessionConfig{ResultLimit: 5, SimilarityThreshold: 0.9})
	mustReply(t, s, "Cats are mammals. Paris is a city.")

	assert.Equal(t, ReplyNoResults, mustReply(t, s, "Tell me about pets"))
	assert.Equal(t, "Cats are mammals.", mustReply(t, s, "cats mammals"))
}

func TestSession_ResultLimit(t *testing.T) {
	s, _ := newTestSession(t, config.SessionConfig{ResultLimit: 1})
	mustReply(t, s, "Cats are mammals. Dogs are mammals.")

	assert.Equal(t, "Dogs are mammals.", mustReply(t, s, "dogs"))
}

func TestSession_QueryBeforeInit(t *testing.T) {
	s, _ := newTestSession(t, config.SessionConfig{})
	assert.Equal(t, ReplyNotInitialized, s.Query(context.Background(), "anything"))
}

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, *models.SearchQuery) ([]models.Match, error) {
	return []models.Match{}, errors.New("embedding endpoint unreachable")
}

func TestSession_SearchError(t *testing.T) {
	emb, err := embedding.NewLocalEmbedder(64)
	require.NoError(t, err)
	store := vector.NewStore()
	s := NewSession(indexer.NewIndexer(store, emb), failingSearcher{}, store, config.SessionConfig{})

	mustReply(t, s, "Cats are mammals.")
	assert.Equal(t, ReplySearchError, mustReply(t, s, "cats"))
	assert.Equal(t, Ready, s.State())
	assert.Equal(t, uint64(1), s.Stats().Searches)
}

func TestSession_Defaults(t *testing.T) {
	s, _ := newTestSession(t, config.SessionConfig{})
	assert.Equal(t, config.DefaultResultLimit, s.Config().ResultLimit)
	assert.Equal(t, "awaiting_init", s.Stats().State)
}

func TestFormatMatches(t *testing.T) {
	match := func(text string) models.Match { return models.Match{Entry: &models.Entry{Text: text}} }

	assert.Equal(t, ReplyNoResults, FormatMatches(nil))
	assert.Equal(t, "A. B.", FormatMatches([]models.Match{match("A"), match("B.")}))
	assert.Equal(t, "Why.", FormatMatches([]models.Match{match("Why?")}))
	assert.Equal(t, "Hi.", FormatMatches([]models.Match{match("  Hi..  ")}))
	assert.Equal(t, ReplyNoResults, FormatMatches([]models.Match{match("...")}))
}
