package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/internal/embedding/store"
	"github.com/kart-io/sentinel-embed/internal/pkg/chunker"
	"github.com/kart-io/sentinel-embed/internal/pkg/normalizer"
	infralog "github.com/kart-io/sentinel-embed/pkg/infra/logger"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
)

// EmbedRequest 生成向量的请求。指针字段为 nil 时使用默认值。
type EmbedRequest struct {
	Input      []string
	Model      string
	Collection string
	Metadata   map[string]any
	ChunkSize  *int
	Overlap    *int
	Chunk      *bool
	Save       *bool
	Optimize   *bool
}

// Embedding 一个块的向量，Index 是在全部输入的全部块中的全局序号。
type Embedding struct {
	Embedding []float32
	Index     int
}

// Usage 按词数统计的用量。
type Usage struct {
	PromptTokens int
	TotalTokens  int
}

// EmbedResult 生成向量的结果。Saved 为 true 时 Data 为空，Message 描述写入结果。
type EmbedResult struct {
	Saved   bool
	Message string
	Model   string
	Data    []Embedding
	Usage   Usage
}

// Embed 先规范化全部输入，再依次分块、编码，然后返回向量或写入存储。
// 规范化后为空的输入视为无效输入。任一块失败即中止，已写入的块不会回滚。
func (s *Service) Embed(ctx context.Context, req *EmbedRequest) (_ *EmbedResult, err error) {
	defer func(start time.Time) { s.metrics.ObserveRequest(metrics.OpEmbed, start, err) }(time.Now())

	if err := validateInput(req.Input); err != nil {
		return nil, err
	}

	d := s.cfg.Defaults
	opts := chunker.Options{Size: intOr(req.ChunkSize, d.ChunkSize), Overlap: intOr(req.Overlap, d.Overlap)}
	doChunk := boolOr(req.Chunk, d.Chunk)
	save := boolOr(req.Save, d.SaveToStore)
	optimize := boolOr(req.Optimize, d.OptimizeText)

	if doChunk {
		if err := opts.Validate(); err != nil {
			return nil, errors.ErrInvalidInput.WithCause(err)
		}
	}

	texts := req.Input
	if optimize {
		texts = make([]string, len(req.Input))
		for i, text := range req.Input {
			texts[i] = normalizer.Normalize(text)
			if strings.TrimSpace(texts[i]) == "" {
				return nil, errors.ErrInvalidInput.WithCause(
					fmt.Errorf("input[%d] is empty after text optimization", i))
			}
		}
	}

	m, err := s.models.Get(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	collection := s.collection(req.Collection)
	if save && s.store.Enabled() {
		if err := s.ensureCollection(ctx, collection, m); err != nil {
			s.metrics.StoreError(metrics.StoreEnsure)
			return nil, errors.ErrStoreWriteFailed.WithCause(err)
		}
	}

	result := &EmbedResult{Saved: save, Model: m.ID}
	index, saved := 0, 0
	for _, text := range texts {
		chunks := []string{text}
		if doChunk {
			chunks, err = chunker.Chunk(text, opts)
			if err != nil {
				if stderrors.Is(err, chunker.ErrInvalidArgument) {
					return nil, errors.ErrInvalidInput.WithCause(err)
				}
				return nil, errors.ErrChunkingFailed.WithCause(err)
			}
		}
		words := len(strings.Fields(text))
		result.Usage.PromptTokens += words
		result.Usage.TotalTokens += words
		if len(chunks) == 0 {
			continue
		}

		vectors, err := m.Embedder.Embed(ctx, chunks)
		if err != nil {
			s.metrics.EncodeError(m.ID)
			return nil, errors.ErrEncodingFailed.WithCause(err)
		}
		if len(vectors) != len(chunks) {
			s.metrics.EncodeError(m.ID)
			return nil, errors.ErrEncodingFailed.WithCause(
				fmt.Errorf("provider returned %d embeddings for %d chunks", len(vectors), len(chunks)))
		}
		s.metrics.AddChunks(m.ID, len(chunks))

		if !save {
			for _, vec := range vectors {
				result.Data = append(result.Data, Embedding{Embedding: vec, Index: index})
				index++
			}
			continue
		}

		points := make([]*store.Point, len(chunks))
		for i, chunk := range chunks {
			points[i] = store.NewPoint(uuid.NewString(), vectors[i], chunk, req.Metadata)
		}
		if err := s.store.Upsert(ctx, collection, points); err != nil {
			s.metrics.StoreError(metrics.StoreUpsert)
			infralog.FromContext(ctx).Errorw("Failed to save embeddings",
				"collection", collection,
				"saved", saved,
				"error", err.Error(),
			)
			return nil, errors.ErrStoreWriteFailed.WithCause(err)
		}
		if s.store.Enabled() {
			s.metrics.AddSaved(s.store.Name(), len(points))
		}
		saved += len(points)
		index += len(points)
	}

	if save {
		result.Data = nil
		if s.store.Enabled() {
			result.Message = fmt.Sprintf("Saved %d embeddings to collection %s", saved, collection)
		} else {
			result.Message = "Vector store is disabled, embeddings were not saved"
		}
	}
	return result, nil
}

// LegacyEmbed 用默认模型为整段文本生成一个向量。
func (s *Service) LegacyEmbed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.ErrInvalidInput.WithMessage("Text is required")
	}
	m, err := s.models.Get(ctx, "")
	if err != nil {
		return nil, err
	}
	vec, err := m.Embedder.EmbedSingle(ctx, text)
	if err != nil {
		s.metrics.EncodeError(m.ID)
		return nil, errors.ErrEncodingFailed.WithCause(err)
	}
	s.metrics.AddChunks(m.ID, 1)
	return vec, nil
}

func validateInput(input []string) error {
	if len(input) == 0 {
		return errors.ErrInvalidInput.WithCause(stderrors.New("input must be a non-empty string or a list of non-empty strings"))
	}
	for i, text := range input {
		if strings.TrimSpace(text) == "" {
			return errors.ErrInvalidInput.WithCause(fmt.Errorf("input[%d] must be a non-empty string", i))
		}
	}
	return nil
}
