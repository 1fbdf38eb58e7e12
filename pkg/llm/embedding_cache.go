package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/sentinel-embed/pkg/utils/json"
)

// EmbeddingCacheConfig Embedding 缓存配置。
type EmbeddingCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
	// Namespace 区分不同模型的缓存，通常为模型 ID。
	Namespace string
}

// DefaultEmbeddingCacheConfig 返回默认的 Embedding 缓存配置。
func DefaultEmbeddingCacheConfig() *EmbeddingCacheConfig {
	return &EmbeddingCacheConfig{
		Enabled:   true,
		TTL:       24 * time.Hour,
		KeyPrefix: "emb:",
	}
}

// CachedEmbeddingProvider 用 Redis 缓存底层供应商的向量结果。
// Redis 故障只记录日志并回退到底层供应商，不会让请求失败。
type CachedEmbeddingProvider struct {
	provider EmbeddingProvider
	redis    goredis.UniversalClient
	config   *EmbeddingCacheConfig
}

// NewCachedEmbeddingProvider 创建带缓存的 Embedding Provider。
func NewCachedEmbeddingProvider(
	provider EmbeddingProvider,
	redis goredis.UniversalClient,
	config *EmbeddingCacheConfig,
) *CachedEmbeddingProvider {
	if config == nil {
		config = DefaultEmbeddingCacheConfig()
	}
	return &CachedEmbeddingProvider{
		provider: provider,
		redis:    redis,
		config:   config,
	}
}

// cacheKey 形如 emb:<namespace>:<sha256(text)>。
func (c *CachedEmbeddingProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	ns := c.config.Namespace
	if ns == "" {
		ns = c.provider.Name()
	}
	return c.config.KeyPrefix + ns + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbeddingProvider) active() bool {
	return c.config.Enabled && c.redis != nil
}

// EmbedSingle 生成单个文本的 Embedding（带缓存）。
func (c *CachedEmbeddingProvider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return embeddings[0], nil
}

// Embed 批量生成 Embedding，仅对未命中的文本调用底层供应商。
func (c *CachedEmbeddingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.active() || len(texts) == 0 {
		return c.provider.Embed(ctx, texts)
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
	}

	embeddings := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))

	// 1. 批量读取缓存
	values, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warnw("redis mget error, falling back to provider", "error", err.Error())
		values = nil
	}
	for i := range texts {
		if i < len(values) {
			if raw, ok := values[i].(string); ok {
				var vec []float32
				if err := json.Unmarshal([]byte(raw), &vec); err == nil && len(vec) > 0 {
					embeddings[i] = vec
					continue
				}
				logger.Warnw("dropping corrupt cached embedding", "key", keys[i])
				_ = c.redis.Del(ctx, keys[i]).Err()
			}
		}
		missing = append(missing, i)
	}

	if len(missing) == 0 {
		logger.Debugw("all embeddings served from cache", "total", len(texts))
		return embeddings, nil
	}

	// 2. 计算未命中的文本
	uncached := make([]string, len(missing))
	for j, idx := range missing {
		uncached[j] = texts[idx]
	}
	logger.Debugw("embedding cache miss", "total", len(texts), "uncached", len(uncached))

	computed, err := c.provider.Embed(ctx, uncached)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(uncached) {
		return nil, ErrEmptyEmbedding
	}

	// 3. 回填结果并写入缓存，写入失败不影响返回
	pipe := c.redis.Pipeline()
	for j, idx := range missing {
		embeddings[idx] = computed[j]
		data, err := json.Marshal(computed[j])
		if err != nil {
			continue
		}
		pipe.Set(ctx, keys[idx], data, c.config.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warnw("failed to cache embeddings", "error", err.Error())
	}

	return embeddings, nil
}

// Name 返回底层 provider 的名称。
func (c *CachedEmbeddingProvider) Name() string {
	return c.provider.Name() + "-cached"
}

// Dimension 透传底层供应商的维度，未知时返回 0。
func (c *CachedEmbeddingProvider) Dimension() int {
	if d, ok := c.provider.(Dimensioned); ok {
		return d.Dimension()
	}
	return 0
}

// Unwrap 返回底层供应商。
func (c *CachedEmbeddingProvider) Unwrap() EmbeddingProvider {
	return c.provider
}

// ClearCache 清除当前命名空间下的缓存。
func (c *CachedEmbeddingProvider) ClearCache(ctx context.Context) (int, error) {
	if !c.active() {
		return 0, nil
	}

	ns := c.config.Namespace
	if ns == "" {
		ns = c.provider.Name()
	}
	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+ns+":*", 0).Iterator()

	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("failed to delete cache key", "error", err.Error(), "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return deleted, err
	}
	return deleted, nil
}

var _ EmbeddingProvider = (*CachedEmbeddingProvider)(nil)
