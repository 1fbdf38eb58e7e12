package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-embed/pkg/llm"
)

func TestProvider_Deterministic(t *testing.T) {
	p := New(Config{Dimension: 64, Bigrams: true})
	ctx := context.Background()

	a, err := p.EmbedSingle(ctx, "the quick brown fox")
	require.NoError(t, err)
	b, err := p.EmbedSingle(ctx, "the quick brown fox")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
}

func TestProvider_UnitLength(t *testing.T) {
	p := New(Config{Dimension: 32})
	vecs, err := p.Embed(context.Background(), []string{"hello world", "", "   "})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for _, v := range vecs {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}

func TestProvider_DifferentTexts(t *testing.T) {
	p := New(Config{Dimension: 384, Bigrams: true})
	vecs, err := p.Embed(context.Background(), []string{"vector search", "banana bread recipe"})
	require.NoError(t, err)
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestNewProvider_FromRegistry(t *testing.T) {
	p, err := llm.NewEmbeddingProvider(ProviderName, map[string]any{"dimension": 16})
	require.NoError(t, err)
	assert.Equal(t, ProviderName, p.Name())

	d, ok := p.(llm.Dimensioned)
	require.True(t, ok)
	assert.Equal(t, 16, d.Dimension())

	_, err = llm.NewEmbeddingProvider(ProviderName, map[string]any{"dimension": -1})
	assert.Error(t, err)
}

func TestEmbed_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{}).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
