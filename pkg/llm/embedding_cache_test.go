package llm

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedProvider(t *testing.T) (*CachedEmbeddingProvider, *mockProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &mockProvider{name: "mock"}
	cfg := DefaultEmbeddingCacheConfig()
	cfg.Namespace = "model-a"
	return NewCachedEmbeddingProvider(inner, client, cfg), inner, mr
}

func TestCachedEmbeddingProvider_HitAndMiss(t *testing.T) {
	c, inner, mr := newCachedProvider(t)
	ctx := context.Background()

	first, err := c.Embed(ctx, []string{"aa", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, int32(2), inner.texts.Load())

	// 第二次只计算新文本
	second, err := c.Embed(ctx, []string{"bbb", "cccc"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, int32(3), inner.texts.Load())
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, float32(4), second[1][0])

	// 全部命中时不调用底层
	_, err = c.EmbedSingle(ctx, "aa")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	keys := mr.Keys()
	assert.Len(t, keys, 3)
	for _, k := range keys {
		assert.Contains(t, k, "emb:model-a:")
		assert.InDelta(t, 24*time.Hour, mr.TTL(k), float64(time.Second))
	}
}

func TestCachedEmbeddingProvider_CorruptEntry(t *testing.T) {
	c, inner, mr := newCachedProvider(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(c.cacheKey("aa"), "not-json"))

	v, err := c.EmbedSingle(ctx, "aa")
	require.NoError(t, err)
	assert.Equal(t, float32(2), v[0])
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedEmbeddingProvider_RedisDown(t *testing.T) {
	c, inner, mr := newCachedProvider(t)
	mr.Close()

	v, err := c.EmbedSingle(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, float32(3), v[0])
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedEmbeddingProvider_Disabled(t *testing.T) {
	inner := &mockProvider{name: "mock"}
	c := NewCachedEmbeddingProvider(inner, nil, nil)

	_, err := c.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, "mock-cached", c.Name())
	assert.Equal(t, 0, c.Dimension())
	assert.Same(t, inner, c.Unwrap())
}

func TestCachedEmbeddingProvider_ClearCache(t *testing.T) {
	c, _, mr := newCachedProvider(t)
	ctx := context.Background()

	_, err := c.Embed(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, mr.Set("other:key", "1"))

	n, err := c.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"other:key"}, mr.Keys())
}
