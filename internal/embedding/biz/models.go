package biz

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/sentinel-embed/pkg/infra/pool"
	"github.com/kart-io/sentinel-embed/pkg/llm"
	embeddingopts "github.com/kart-io/sentinel-embed/pkg/options/embedding"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
)

// sampleText 用于探测未声明维度的供应商的向量长度。
const sampleText = "dimension check"

// Model 已加载的模型。
type Model struct {
	// ID 模型标识。
	ID string
	// Provider 供应商名称。
	Provider string
	// Dimension 向量维度。
	Dimension int
	// Embedder 生成向量的供应商，启用缓存时为带缓存的包装。
	Embedder llm.EmbeddingProvider
}

// ModelInfo 模型目录中的一项。
type ModelInfo struct {
	ID        string
	Provider  string
	Dimension int
	Loaded    bool
	Default   bool
}

// ProviderFactory 按供应商名称与配置创建 Embedding 供应商。
type ProviderFactory func(provider string, config map[string]any) (llm.EmbeddingProvider, error)

// ModelCache 按模型 ID 缓存已加载的模型。
//
// 已缓存条目只需读锁；同一模型的并发首次加载通过 singleflight 合并为一次。
// 加载失败不写入缓存，下次调用会重新加载。
type ModelCache struct {
	catalogue map[string]embeddingopts.ModelOptions
	order     []string
	defaultID string

	redis   goredis.UniversalClient
	cache   *embeddingopts.CacheOptions
	factory ProviderFactory

	mu     sync.RWMutex
	models map[string]*Model
	group  singleflight.Group
}

// ModelCacheOption 配置 ModelCache。
type ModelCacheOption func(*ModelCache)

// WithRedis 为模型启用 Redis 向量缓存，cfg.Enable 为 false 时不生效。
func WithRedis(rdb goredis.UniversalClient, cfg *embeddingopts.CacheOptions) ModelCacheOption {
	return func(c *ModelCache) {
		c.redis = rdb
		c.cache = cfg
	}
}

// WithProviderFactory 替换默认的供应商注册表。
func WithProviderFactory(f ProviderFactory) ModelCacheOption {
	return func(c *ModelCache) {
		c.factory = f
	}
}

// NewModelCache 根据模型目录创建缓存，不会加载任何模型。
func NewModelCache(opts *embeddingopts.Options, options ...ModelCacheOption) *ModelCache {
	if opts == nil {
		opts = embeddingopts.NewOptions()
	}
	c := &ModelCache{
		catalogue: make(map[string]embeddingopts.ModelOptions, len(opts.Models)),
		defaultID: opts.DefaultModel,
		factory:   llm.NewEmbeddingProvider,
		models:    make(map[string]*Model),
	}
	for _, m := range opts.Models {
		if _, ok := c.catalogue[m.ID]; !ok {
			c.order = append(c.order, m.ID)
		}
		c.catalogue[m.ID] = m
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// DefaultID 返回默认模型 ID。
func (c *ModelCache) DefaultID() string {
	return c.defaultID
}

// Resolve 把空模型 ID 解析为默认模型。
func (c *ModelCache) Resolve(id string) string {
	if id == "" {
		return c.defaultID
	}
	return id
}

// Get 返回已加载的模型，首次使用时加载。未知模型与加载失败都返回 ErrModelUnavailable。
func (c *ModelCache) Get(ctx context.Context, id string) (*Model, error) {
	id = c.Resolve(id)

	c.mu.RLock()
	m, ok := c.models[id]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	entry, ok := c.catalogue[id]
	if !ok {
		return nil, errors.ErrModelUnavailable.WithCause(fmt.Errorf("unknown model %q", id))
	}

	// 加载结果由所有等待者共享，不跟随首个调用方的取消。
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(id, func() (any, error) {
		c.mu.RLock()
		m, ok := c.models[id]
		c.mu.RUnlock()
		if ok {
			return m, nil
		}

		m, err := c.load(loadCtx, entry)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.models[id] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		logger.Warnw("Failed to load embedding model", "model", id, "error", err.Error())
		return nil, errors.ErrModelUnavailable.WithCause(err)
	}
	return v.(*Model), nil
}

func (c *ModelCache) load(ctx context.Context, entry embeddingopts.ModelOptions) (*Model, error) {
	provider, err := c.factory(entry.Provider, entry.Config)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", entry.ID, err)
	}

	dim := 0
	if d, ok := provider.(llm.Dimensioned); ok {
		dim = d.Dimension()
	}
	if dim <= 0 {
		vec, err := provider.EmbedSingle(ctx, sampleText)
		if err != nil {
			return nil, fmt.Errorf("model %s: dimension check failed: %w", entry.ID, err)
		}
		dim = len(vec)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("model %s: provider returned an empty embedding", entry.ID)
	}

	var embedder llm.EmbeddingProvider = provider
	if c.cache != nil && c.cache.Enable && c.redis != nil {
		embedder = llm.NewCachedEmbeddingProvider(provider, c.redis, &llm.EmbeddingCacheConfig{
			Enabled:   true,
			TTL:       c.cache.TTL,
			KeyPrefix: c.cache.KeyPrefix,
			Namespace: entry.ID,
		})
	}

	logger.Infow("Embedding model loaded",
		"model", entry.ID,
		"provider", entry.Provider,
		"dimension", dim,
	)
	return &Model{
		ID:        entry.ID,
		Provider:  entry.Provider,
		Dimension: dim,
		Embedder:  embedder,
	}, nil
}

// Preload 在 p 上并发加载目录中的全部模型，返回所有失败的聚合错误。
func (c *ModelCache) Preload(ctx context.Context, p *pool.Pool) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	tasks := make([]func(context.Context), 0, len(c.order))
	for _, id := range c.order {
		tasks = append(tasks, func(ctx context.Context) {
			if ctx.Err() != nil {
				return
			}
			if _, err := c.Get(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				mu.Unlock()
			}
		})
	}

	if p != nil {
		p.RunAll(ctx, tasks...)
	} else {
		for _, task := range tasks {
			task(ctx)
		}
	}

	if len(errs) > 0 {
		return utilerrors.NewAggregate(errs)
	}
	return ctx.Err()
}

// List 按 ID 排序返回模型目录及加载状态。
func (c *ModelCache) List() []ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]ModelInfo, 0, len(c.order))
	for _, id := range c.order {
		entry := c.catalogue[id]
		info := ModelInfo{
			ID:       id,
			Provider: entry.Provider,
			Default:  id == c.defaultID,
		}
		if m, ok := c.models[id]; ok {
			info.Loaded = true
			info.Dimension = m.Dimension
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}
