package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/internal/pkg/chunker"
	"github.com/kart-io/sentinel-embed/internal/pkg/normalizer"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
)

// ChunkRequest 分块请求。
type ChunkRequest struct {
	Text      string
	ChunkSize *int
	Overlap   *int
}

// Chunk 按词数把文本切成重叠的块。
func (s *Service) Chunk(_ context.Context, req *ChunkRequest) (_ []string, err error) {
	defer func(start time.Time) { s.metrics.ObserveRequest(metrics.OpChunk, start, err) }(time.Now())

	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.ErrInvalidInput.WithCause(stderrors.New("text must be a non-empty string"))
	}
	opts := chunker.Options{
		Size:    intOr(req.ChunkSize, s.cfg.Defaults.ChunkSize),
		Overlap: intOr(req.Overlap, s.cfg.Defaults.Overlap),
	}
	chunks, err := chunker.Chunk(req.Text, opts)
	if err != nil {
		if stderrors.Is(err, chunker.ErrInvalidArgument) {
			return nil, errors.ErrInvalidInput.WithCause(err)
		}
		return nil, errors.ErrChunkingFailed.WithCause(err)
	}
	return chunks, nil
}

// OptimizeRequest 文本规范化请求。
type OptimizeRequest struct {
	Text            string
	ReplaceSymbols  bool
	RemoveStopwords bool
	Stem            bool
	Lemmatize       bool
	Language        string
}

// Optimize 规范化文本：小写、可选符号替换、剔除符号、折叠空白，再执行可选的词级步骤。
func (s *Service) Optimize(_ context.Context, req *OptimizeRequest) (_ string, err error) {
	defer func(start time.Time) { s.metrics.ObserveRequest(metrics.OpOptimize, start, err) }(time.Now())

	if strings.TrimSpace(req.Text) == "" {
		return "", errors.ErrInvalidInput.WithCause(stderrors.New("text must be a non-empty string"))
	}
	lang := req.Language
	if lang == "" {
		lang = s.cfg.Defaults.Language
	}
	if !normalizer.SupportedLanguage(lang) {
		return "", errors.ErrInvalidInput.WithCause(fmt.Errorf("unsupported language %q", lang))
	}

	opts := normalizer.DefaultOptions()
	opts.ReplaceSymbols = req.ReplaceSymbols
	opts.RemoveStopwords = req.RemoveStopwords
	opts.Stem = req.Stem
	opts.Lemmatize = req.Lemmatize
	opts.Language = lang
	return normalizer.New(opts).Normalize(req.Text), nil
}
