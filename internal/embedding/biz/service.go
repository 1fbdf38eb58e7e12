package biz

import (
	"context"

	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/internal/embedding/store"
	pipelineopts "github.com/kart-io/sentinel-embed/pkg/options/pipeline"
)

// Config 业务层配置。
type Config struct {
	// Collection 请求未指定集合时使用的集合。
	Collection string
	// VectorSize 模型维度未知时创建集合使用的维度。
	VectorSize int
	// Distance 惰性创建集合时使用的距离度量。
	Distance store.Distance
	// Defaults 请求省略字段时的默认值。
	Defaults *pipelineopts.Options
	// Metrics 业务指标，nil 时不记录。
	Metrics *metrics.Metrics
}

// Service Embedding 服务。
type Service struct {
	models  *ModelCache
	store   store.VectorStore
	metrics *metrics.Metrics
	cfg     Config
}

// NewService 创建服务。store 为 nil 时使用 DisabledStore。
func NewService(models *ModelCache, vs store.VectorStore, cfg Config) *Service {
	if vs == nil {
		vs = store.DisabledStore{}
	}
	if cfg.Defaults == nil {
		cfg.Defaults = pipelineopts.NewOptions()
	}
	if cfg.Collection == "" {
		cfg.Collection = "embeddings"
	}
	if cfg.VectorSize <= 0 {
		cfg.VectorSize = 384
	}
	if cfg.Distance == "" {
		cfg.Distance = store.Cosine
	}
	return &Service{models: models, store: vs, metrics: cfg.Metrics, cfg: cfg}
}

// Metrics 返回业务指标，未配置时为 nil。
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// Models 返回模型缓存。
func (s *Service) Models() *ModelCache {
	return s.models
}

// StoreStatus 返回存储后端名称及是否可用。
func (s *Service) StoreStatus() (string, bool) {
	return s.store.Name(), s.store.Enabled()
}

// ListModels 返回模型目录。
func (s *Service) ListModels(_ context.Context) []ModelInfo {
	return s.models.List()
}

func (s *Service) collection(name string) string {
	if name == "" {
		return s.cfg.Collection
	}
	return name
}

// ensureCollection 以模型维度惰性创建集合。
func (s *Service) ensureCollection(ctx context.Context, name string, m *Model) error {
	dim := m.Dimension
	if dim <= 0 {
		dim = s.cfg.VectorSize
	}
	return s.store.EnsureCollection(ctx, name, dim, s.cfg.Distance)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
