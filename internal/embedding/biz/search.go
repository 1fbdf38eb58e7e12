package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/internal/embedding/store"
	infralog "github.com/kart-io/sentinel-embed/pkg/infra/logger"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
)

// SearchRequest 相似度检索请求。
type SearchRequest struct {
	Query          string
	Model          string
	Collection     string
	TopK           *int
	ScoreThreshold *float32
	// Filter 载荷等值过滤条件。
	Filter map[string]any
}

// Search 编码查询文本并在集合中检索。存储关闭或集合从未写入时返回空列表。
func (s *Service) Search(ctx context.Context, req *SearchRequest) (_ []*store.SearchResult, err error) {
	defer func(start time.Time) { s.metrics.ObserveRequest(metrics.OpSearch, start, err) }(time.Now())

	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.ErrInvalidInput.WithCause(stderrors.New("query must be a non-empty string"))
	}
	topK := intOr(req.TopK, s.cfg.Defaults.TopK)
	if topK <= 0 {
		return nil, errors.ErrInvalidInput.WithCause(fmt.Errorf("top_k must be positive, got %d", topK))
	}
	if err := store.ValidateFilter(req.Filter); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}

	m, err := s.models.Get(ctx, req.Model)
	if err != nil {
		return nil, err
	}
	vec, err := m.Embedder.EmbedSingle(ctx, req.Query)
	if err != nil {
		s.metrics.EncodeError(m.ID)
		return nil, errors.ErrEncodingFailed.WithCause(err)
	}

	if !s.store.Enabled() {
		return []*store.SearchResult{}, nil
	}

	collection := s.collection(req.Collection)
	if err := s.ensureCollection(ctx, collection, m); err != nil {
		s.metrics.StoreError(metrics.StoreEnsure)
		return nil, errors.ErrStoreSearchFailed.WithCause(err)
	}
	results, err := s.store.Search(ctx, collection, &store.SearchQuery{
		Vector:         vec,
		TopK:           topK,
		ScoreThreshold: req.ScoreThreshold,
		Filter:         req.Filter,
	})
	if err != nil {
		if stderrors.Is(err, store.ErrInvalidFilter) {
			return nil, errors.ErrInvalidInput.WithCause(err)
		}
		s.metrics.StoreError(metrics.StoreSearch)
		return nil, errors.ErrStoreSearchFailed.WithCause(err)
	}
	if results == nil {
		results = []*store.SearchResult{}
	}
	infralog.FromContext(ctx).Debugw("Search completed", "collection", collection, "top_k", topK, "hits", len(results))
	return results, nil
}
