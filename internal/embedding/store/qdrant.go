//go:build !milvus

package store

import (
	"context"
	"fmt"
	"math"

	"github.com/qdrant/go-client/qdrant"

	qdrantclient "github.com/kart-io/sentinel-embed/pkg/component/qdrant"
	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	qdrantopts "github.com/kart-io/sentinel-embed/pkg/options/qdrant"
	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
	"github.com/kart-io/sentinel-embed/pkg/utils/json"
)

func init() {
	registerBackend(storeopts.BackendQdrant, openQdrant)
}

func openQdrant(ctx context.Context, cfg *Config, _ Distance) (VectorStore, storage.Client, error) {
	opts := cfg.Qdrant
	if opts == nil {
		opts = qdrantopts.NewOptions()
	}
	client, err := qdrantclient.New(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return NewQdrantStore(client), client, nil
}

// QdrantStore 基于 Qdrant gRPC 接口的向量存储。
type QdrantStore struct {
	client *qdrantclient.Client
	raw    *qdrant.Client
}

var _ VectorStore = (*QdrantStore)(nil)

// NewQdrantStore 用已连接的客户端创建存储。
func NewQdrantStore(client *qdrantclient.Client) *QdrantStore {
	return &QdrantStore{client: client, raw: client.RawClient()}
}

// Name 返回后端名称。
func (s *QdrantStore) Name() string { return "qdrant" }

// Enabled 总是返回 true。
func (s *QdrantStore) Enabled() bool { return true }

func (s *QdrantStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := s.client.Timeout(); t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

func qdrantDistance(metric Distance) qdrant.Distance {
	switch metric {
	case Euclid:
		return qdrant.Distance_Euclid
	case Dot:
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Cosine
	}
}

// EnsureCollection 集合不存在时创建，已存在时不校验参数。
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, dim int, metric Distance) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.raw.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	err = s.raw.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrantDistance(metric),
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// Upsert 按 ID 写入点并等待落盘。
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		structs[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: toQdrantPayload(p.Payload),
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	wait := true
	if _, err := s.raw.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         structs,
	}); err != nil {
		return fmt.Errorf("failed to upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

// Search 在服务端完成过滤、阈值与排序。
func (s *QdrantStore) Search(ctx context.Context, collection string, q *SearchQuery) ([]*SearchResult, error) {
	limit := uint64(q.TopK)
	req := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: q.ScoreThreshold,
	}
	if len(q.Filter) > 0 {
		filter, err := toQdrantFilter(q.Filter)
		if err != nil {
			return nil, err
		}
		req.Filter = filter
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	points, err := s.raw.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	results := make([]*SearchResult, 0, len(points))
	for _, p := range points {
		payload := fromQdrantPayload(p.GetPayload())
		text, rest := splitPayload(payload)
		results = append(results, &SearchResult{
			ID:      pointID(p.GetId()),
			Score:   p.GetScore(),
			Text:    text,
			Payload: rest,
		})
	}
	return results, nil
}

// Close 关闭连接。
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprint(id.GetNum())
}

func toQdrantFilter(filter map[string]any) (*qdrant.Filter, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	must := make([]*qdrant.Condition, 0, len(filter))
	for k, v := range filter {
		switch val := v.(type) {
		case string:
			must = append(must, qdrant.NewMatch(k, val))
		case bool:
			must = append(must, qdrant.NewMatchBool(k, val))
		default:
			f, _ := toFloat(val)
			if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				must = append(must, qdrant.NewMatchInt(k, int64(f)))
				continue
			}
			must = append(must, qdrant.NewRange(k, &qdrant.Range{Gte: &f, Lte: &f}))
		}
	}
	return &qdrant.Filter{Must: must}, nil
}

func toQdrantPayload(payload map[string]any) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		out[k] = toQdrantValue(v)
	}
	return out
}

func toQdrantValue(v any) *qdrant.Value {
	switch val := v.(type) {
	case nil:
		return qdrant.NewValueNull()
	case string:
		return qdrant.NewValueString(val)
	case bool:
		return qdrant.NewValueBool(val)
	case int:
		return qdrant.NewValueInt(int64(val))
	case int64:
		return qdrant.NewValueInt(val)
	case float32:
		return qdrant.NewValueDouble(float64(val))
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return qdrant.NewValueInt(int64(val))
		}
		return qdrant.NewValueDouble(val)
	case []any:
		values := make([]*qdrant.Value, len(val))
		for i, item := range val {
			values[i] = toQdrantValue(item)
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}
	case map[string]any:
		return &qdrant.Value{Kind: &qdrant.Value_StructValue{StructValue: &qdrant.Struct{Fields: toQdrantPayload(val)}}}
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return qdrant.NewValueString(fmt.Sprint(val))
		}
		return qdrant.NewValueString(string(data))
	}
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = fromQdrantValue(v)
	}
	return out
}

func fromQdrantValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = fromQdrantValue(item)
		}
		return out
	case *qdrant.Value_StructValue:
		return fromQdrantPayload(kind.StructValue.GetFields())
	default:
		return nil
	}
}
