//go:build milvus

package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	milvusclient "github.com/kart-io/sentinel-embed/pkg/component/milvus"
	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	milvusopts "github.com/kart-io/sentinel-embed/pkg/options/milvus"
	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
	"github.com/kart-io/sentinel-embed/pkg/utils/json"
)

func init() {
	registerBackend(storeopts.BackendMilvus, openMilvus)
}

func openMilvus(ctx context.Context, cfg *Config, distance Distance) (VectorStore, storage.Client, error) {
	opts := cfg.Milvus
	if opts == nil {
		opts = milvusopts.NewOptions()
	}
	client, err := milvusclient.New(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return NewMilvusStore(client, distance), client, nil
}

// MilvusStore 基于 Milvus 的向量存储。
// 元数据存放在 JSON 字段中，过滤条件翻译为 Milvus 布尔表达式。
type MilvusStore struct {
	client   *milvusclient.Client
	fallback Distance

	mu      sync.RWMutex
	metrics map[string]Distance
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore 创建存储，fallback 用于本进程未创建过的集合的分数方向。
func NewMilvusStore(client *milvusclient.Client, fallback Distance) *MilvusStore {
	return &MilvusStore{client: client, fallback: fallback, metrics: make(map[string]Distance)}
}

// Name 返回后端名称。
func (s *MilvusStore) Name() string { return "milvus" }

// Enabled 总是返回 true。
func (s *MilvusStore) Enabled() bool { return true }

// EnsureCollection 集合不存在时创建并加载。
func (s *MilvusStore) EnsureCollection(ctx context.Context, name string, dim int, metric Distance) error {
	if err := s.client.EnsureCollection(ctx, name, dim, milvusclient.MetricType(string(metric))); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.metrics[name]; !ok {
		s.metrics[name] = metric
	}
	s.mu.Unlock()
	return nil
}

func (s *MilvusStore) metric(collection string) Distance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.metrics[collection]; ok {
		return m
	}
	return s.fallback
}

// Upsert 写入点，text 单独成列，其余载荷序列化为 JSON。
func (s *MilvusStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	if len(points) == 0 {
		return nil
	}
	rows := make([]milvusclient.Row, len(points))
	for i, p := range points {
		text, rest := splitPayload(p.Payload)
		meta, err := json.Marshal(rest)
		if err != nil {
			return fmt.Errorf("failed to encode payload of point %s: %w", p.ID, err)
		}
		rows[i] = milvusclient.Row{ID: p.ID, Vector: p.Vector, Text: text, Metadata: meta}
	}
	return s.client.Upsert(ctx, collection, rows)
}

// Search 检索并在客户端应用阈值。
func (s *MilvusStore) Search(ctx context.Context, collection string, q *SearchQuery) ([]*SearchResult, error) {
	expr, err := FilterExpr(q.Filter)
	if err != nil {
		return nil, err
	}

	hits, err := s.client.Search(ctx, collection, q.Vector, q.TopK, expr)
	if err != nil {
		return nil, err
	}

	results := make([]*SearchResult, 0, len(hits))
	for _, h := range hits {
		payload := map[string]any{}
		if len(h.Metadata) > 0 {
			if err := json.Unmarshal(h.Metadata, &payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload of point %s: %w", h.ID, err)
			}
		}
		results = append(results, &SearchResult{ID: h.ID, Score: h.Score, Text: h.Text, Payload: payload})
	}
	return rank(results, q, s.metric(collection)), nil
}

// Close 关闭连接。
func (s *MilvusStore) Close() error {
	return s.client.Close()
}

// FilterExpr 把等值过滤翻译为 Milvus 表达式，键按字典序拼接。
// text 键匹配文本列，其余键匹配 metadata JSON 字段。
func FilterExpr(filter map[string]any) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}
	if err := ValidateFilter(filter); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		field := fmt.Sprintf("%s[%s]", milvusclient.FieldMetadata, quoteLiteral(k))
		if k == PayloadText {
			field = milvusclient.FieldText
		}
		parts = append(parts, field+" == "+literal(filter[k]))
	}
	return strings.Join(parts, " and "), nil
}

func literal(v any) string {
	switch val := v.(type) {
	case string:
		return quoteLiteral(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		f, _ := toFloat(val)
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteLiteral 生成 Milvus 表达式的双引号字符串，只转义反斜杠与双引号。
func quoteLiteral(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}
