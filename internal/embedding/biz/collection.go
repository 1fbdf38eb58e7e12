package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/internal/embedding/store"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
)

// CollectionRequest 创建集合请求。
type CollectionRequest struct {
	Name       string
	VectorSize *int
	Distance   string
}

// CollectionResult 创建集合结果。
type CollectionResult struct {
	Name       string
	VectorSize int
	Distance   store.Distance
	Message    string
}

// CreateCollection 幂等创建集合。已存在的集合保持原样，不校验维度。
func (s *Service) CreateCollection(ctx context.Context, req *CollectionRequest) (_ *CollectionResult, err error) {
	defer func(start time.Time) { s.metrics.ObserveRequest(metrics.OpCollection, start, err) }(time.Now())

	if req.Name == "" {
		return nil, errors.ErrInvalidInput.WithCause(stderrors.New("collection_name is required"))
	}
	size := intOr(req.VectorSize, s.cfg.VectorSize)
	if size <= 0 {
		return nil, errors.ErrInvalidInput.WithCause(fmt.Errorf("vector_size must be positive, got %d", size))
	}
	distance := s.cfg.Distance
	if req.Distance != "" {
		d, err := store.ParseDistance(req.Distance)
		if err != nil {
			return nil, errors.ErrInvalidInput.WithCause(err)
		}
		distance = d
	}

	result := &CollectionResult{Name: req.Name, VectorSize: size, Distance: distance}
	if !s.store.Enabled() {
		result.Message = "Vector store is disabled, collection was not created"
		return result, nil
	}

	if err := s.store.EnsureCollection(ctx, req.Name, size, distance); err != nil {
		s.metrics.StoreError(metrics.StoreEnsure)
		return nil, errors.ErrCollectionFailed.WithCause(err)
	}
	logger.Infow("Collection ensured", "collection", req.Name, "vector_size", size, "distance", string(distance))
	result.Message = fmt.Sprintf("Collection %s is ready", req.Name)
	return result, nil
}
