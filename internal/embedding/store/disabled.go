package store

import "context"

// DisabledStore 存储关闭或连接失败时使用的空实现。
// 写入直接跳过，检索返回空列表。
type DisabledStore struct{}

var _ VectorStore = DisabledStore{}

// Name 返回后端名称。
func (DisabledStore) Name() string { return "disabled" }

// Enabled 总是返回 false。
func (DisabledStore) Enabled() bool { return false }

// EnsureCollection 不做任何事。
func (DisabledStore) EnsureCollection(context.Context, string, int, Distance) error { return nil }

// Upsert 不做任何事。
func (DisabledStore) Upsert(context.Context, string, []*Point) error { return nil }

// Search 返回空列表。
func (DisabledStore) Search(context.Context, string, *SearchQuery) ([]*SearchResult, error) {
	return []*SearchResult{}, nil
}

// Close 不做任何事。
func (DisabledStore) Close() error { return nil }
