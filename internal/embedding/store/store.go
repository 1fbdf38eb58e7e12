// Package store 定义向量存储接口及其 qdrant、milvus、sqlite、内存与禁用实现。
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kart-io/sentinel-embed/internal/pkg/vecutil"
)

// PayloadText 载荷中保存块文本的键，任何写入都保证存在。
const PayloadText = "text"

var (
	// ErrCollectionNotFound 集合不存在。
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch 向量维度与集合维度不一致。
	ErrDimensionMismatch = errors.New("vector dimension does not match collection")
	// ErrInvalidFilter 过滤条件的值不是标量。
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrUnsupportedDistance 未知的距离度量。
	ErrUnsupportedDistance = errors.New("unsupported distance")
)

// Distance 向量距离度量。
type Distance string

// 支持的距离度量。
const (
	Cosine Distance = "COSINE"
	Euclid Distance = "EUCLID"
	Dot    Distance = "DOT"
)

// ParseDistance 解析距离名称，大小写不敏感，接受 L2、EUCLIDEAN、IP 等别名。
func ParseDistance(s string) (Distance, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "COSINE":
		return Cosine, nil
	case "EUCLID", "EUCLIDEAN", "L2":
		return Euclid, nil
	case "DOT", "IP":
		return Dot, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDistance, s)
	}
}

// HigherIsBetter 报告该度量下分数越大是否越相似。欧氏距离越小越相似。
func (d Distance) HigherIsBetter() bool {
	return d != Euclid
}

// Point 向量存储中的一个点。
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// NewPoint 创建点，调用方元数据在下、块文本在上合并为载荷。
func NewPoint(id string, vector []float32, text string, metadata map[string]any) *Point {
	return &Point{ID: id, Vector: vector, Payload: MergePayload(metadata, text)}
}

// MergePayload 复制 metadata 并写入 text，text 键始终保留块文本。
func MergePayload(metadata map[string]any, text string) map[string]any {
	payload := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	payload[PayloadText] = text
	return payload
}

// SearchQuery 检索参数。
type SearchQuery struct {
	// Vector 查询向量。
	Vector []float32
	// TopK 返回结果数上限。
	TopK int
	// ScoreThreshold 非空时按度量方向过滤结果，不改变排序。
	ScoreThreshold *float32
	// Filter 载荷键的等值过滤条件，全部满足才命中。
	Filter map[string]any
}

// SearchResult 检索结果。
type SearchResult struct {
	ID    string
	Score float32
	Text  string
	// Payload 除 text 以外的载荷字段。
	Payload map[string]any
}

// VectorStore 向量存储接口。
type VectorStore interface {
	// Name 返回后端名称。
	Name() string
	// Enabled 报告存储是否真实可用；禁用存储返回 false。
	Enabled() bool
	// EnsureCollection 幂等创建集合，已存在时不校验维度。
	EnsureCollection(ctx context.Context, name string, dim int, metric Distance) error
	// Upsert 按 ID 插入或覆盖点。
	Upsert(ctx context.Context, collection string, points []*Point) error
	// Search 相似度检索，结果按相似度从高到低排列，长度不超过 TopK。
	Search(ctx context.Context, collection string, q *SearchQuery) ([]*SearchResult, error)
	// Close 释放连接。
	Close() error
}

// ValidateFilter 校验过滤值均为字符串、布尔或数字。
func ValidateFilter(filter map[string]any) error {
	for k, v := range filter {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidFilter)
		}
		switch v.(type) {
		case string, bool:
		default:
			if _, ok := toFloat(v); !ok {
				return fmt.Errorf("%w: value of %q must be a string, number or boolean, got %T", ErrInvalidFilter, k, v)
			}
		}
	}
	return nil
}

// MatchFilter 报告载荷是否满足全部等值条件，数字按数值比较。
func MatchFilter(payload, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := payload[k]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// passThreshold 报告分数是否满足阈值。
func passThreshold(score float32, threshold *float32, metric Distance) bool {
	if threshold == nil {
		return true
	}
	if metric.HigherIsBetter() {
		return score >= *threshold
	}
	return score <= *threshold
}

// rank 按度量方向稳定排序、截取 topK 并应用阈值。
func rank(results []*SearchResult, q *SearchQuery, metric Distance) []*SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if metric.HigherIsBetter() {
			return results[i].Score > results[j].Score
		}
		return results[i].Score < results[j].Score
	})
	if q.TopK > 0 && len(results) > q.TopK {
		results = results[:q.TopK]
	}
	out := results[:0]
	for _, r := range results {
		if passThreshold(r.Score, q.ScoreThreshold, metric) {
			out = append(out, r)
		}
	}
	return out
}

// splitPayload 把载荷拆成文本与其余字段。
func splitPayload(payload map[string]any) (string, map[string]any) {
	text, _ := payload[PayloadText].(string)
	rest := make(map[string]any, len(payload))
	for k, v := range payload {
		if k != PayloadText {
			rest[k] = v
		}
	}
	return text, rest
}

// score 按度量计算查询向量与候选向量的分数，调用方保证维度一致。
func score(metric Distance, query, vec []float32) float32 {
	switch metric {
	case Euclid:
		d, _ := vecutil.EuclideanDistance(query, vec)
		return float32(d)
	case Dot:
		return float32(vecutil.Dot(query, vec))
	default:
		c, _ := vecutil.CosineSimilarity(query, vec)
		return float32(c)
	}
}
