package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestLocalEmbedder_Deterministic(t *testing.T) {
	emb, err := NewLocalEmbedder(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLocalDimensions, emb.Dimensions())
	assert.Equal(t, KindLocal, emb.Kind())

	a, err := emb.Embed(context.Background(), "Cats are mammals")
	require.NoError(t, err)
	b, err := emb.Embed(context.Background(), "Cats are mammals")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultLocalDimensions)
	assert.InDelta(t, 1.0, math.Sqrt(dot(a, a)), 1e-5)
}

func TestLocalEmbedder_SharedVocabularyScoresHigher(t *testing.T) {
	emb, err := NewLocalEmbedder(512)
	require.NoError(t, err)
	ctx := context.Background()

	cats, err := emb.Embed(ctx, "Cats are mammals")
	require.NoError(t, err)
	dogs, err := emb.Embed(ctx, "Dogs are mammals")
	require.NoError(t, err)
	paris, err := emb.Embed(ctx, "Paris is a city")
	require.NoError(t, err)

	assert.Greater(t, dot(cats, dogs), dot(cats, paris))
	assert.InDelta(t, 0.0, dot(cats, paris), 1e-6)
}

func TestLocalEmbedder_BlankInput(t *testing.T) {
	emb, err := NewLocalEmbedder(64)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := emb.Embed(context.Background(), text)
		require.Error(t, err)
		assert.True(t, IsKind(err, ErrInvalidInput), "text %q", text)
		assert.ErrorIs(t, err, ErrEmptyText)
	}
}

func TestLocalEmbedder_EmbedBatch(t *testing.T) {
	emb, err := NewLocalEmbedder(128)
	require.NoError(t, err)

	vecs, err := emb.EmbedBatch(context.Background(), []string{"first sentence", "second sentence"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 128)

	_, err = emb.EmbedBatch(context.Background(), []string{"ok", " "})
	assert.True(t, IsKind(err, ErrInvalidInput))
}

func TestTermAnalyzer_Terms(t *testing.T) {
	ta, err := NewTermAnalyzer()
	require.NoError(t, err)

	terms := ta.Terms("Cats are mammals")
	assert.Contains(t, terms, "cat")
	assert.Contains(t, terms, "mammal")
	assert.Empty(t, ta.Terms("   "))
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, SplitWords("hello, world! 42"))
	assert.Nil(t, SplitWords(" .,; "))
}

func TestError_Message(t *testing.T) {
	err := newError(KindRemoteAPI, ErrAuth, assert.AnError)
	assert.Contains(t, err.Error(), "remote-api")
	assert.Contains(t, err.Error(), "auth")
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, IsKind(assert.AnError, ErrAuth))
}

func TestLocalEmbedder_StopWordsOnly(t *testing.T) {
	emb, err := NewLocalEmbedder(64)
	require.NoError(t, err)
	ctx := context.Background()

	v, err := emb.Embed(ctx, "the and of")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5)

	punct, err := emb.Embed(ctx, "!!!")
	require.NoError(t, err)
	assert.Zero(t, dot(punct, punct))
}
