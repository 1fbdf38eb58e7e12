package store

import (
	"context"
	"fmt"
	"sync"
)

type memoryCollection struct {
	dim    int
	metric Distance
	ids    []string
	points map[string]*Point
}

// MemoryStore 进程内暴力检索存储，重启即丢失，适合开发与测试。
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Name 返回后端名称。
func (s *MemoryStore) Name() string { return "memory" }

// Enabled 总是返回 true。
func (s *MemoryStore) Enabled() bool { return true }

// EnsureCollection 幂等创建集合。
func (s *MemoryStore) EnsureCollection(_ context.Context, name string, dim int, metric Distance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; ok {
		return nil
	}
	s.collections[name] = &memoryCollection{
		dim:    dim,
		metric: metric,
		points: make(map[string]*Point),
	}
	return nil
}

// Upsert 按 ID 插入或覆盖点，整批校验通过后才写入。
func (s *MemoryStore) Upsert(_ context.Context, collection string, points []*Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	for _, p := range points {
		if len(p.Vector) != c.dim {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(p.Vector), c.dim)
		}
	}
	for _, p := range points {
		if _, exists := c.points[p.ID]; !exists {
			c.ids = append(c.ids, p.ID)
		}
		c.points[p.ID] = &Point{
			ID:      p.ID,
			Vector:  append([]float32(nil), p.Vector...),
			Payload: MergePayload(p.Payload, textOf(p.Payload)),
		}
	}
	return nil
}

// Search 暴力计算全部点的分数。集合不存在时返回空结果。
func (s *MemoryStore) Search(_ context.Context, collection string, q *SearchQuery) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []*SearchResult{}, nil
	}
	if len(q.Vector) != c.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(q.Vector), c.dim)
	}

	results := make([]*SearchResult, 0, len(c.ids))
	for _, id := range c.ids {
		p := c.points[id]
		if !MatchFilter(p.Payload, q.Filter) {
			continue
		}
		text, rest := splitPayload(p.Payload)
		results = append(results, &SearchResult{
			ID:      id,
			Score:   score(c.metric, q.Vector, p.Vector),
			Text:    text,
			Payload: rest,
		})
	}
	return rank(results, q, c.metric), nil
}

// Len 返回集合中的点数。
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[collection]; ok {
		return len(c.points)
	}
	return 0
}

// Close 无操作。
func (s *MemoryStore) Close() error { return nil }

func textOf(payload map[string]any) string {
	text, _ := payload[PayloadText].(string)
	return text
}
