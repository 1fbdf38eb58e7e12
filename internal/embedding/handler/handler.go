// Package handler provides the HTTP handlers of the embedding service.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/kart-io/sentinel-embed/internal/embedding/biz"
	"github.com/kart-io/sentinel-embed/internal/embedding/metrics"
	"github.com/kart-io/sentinel-embed/pkg/infra/app"
	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
	"github.com/kart-io/sentinel-embed/pkg/utils/json"
	"github.com/kart-io/sentinel-embed/pkg/utils/response"
)

// Object types specific to the embedding API.
const (
	objectEmbedding    = "embedding"
	objectSearchResult = "search_result"
	objectModel        = "model"
)

// Handler serves the embedding API.
type Handler struct {
	svc *biz.Service
}

// New creates a Handler.
func New(svc *biz.Service) *Handler {
	return &Handler{svc: svc}
}

// Metrics returns the service metrics, nil when none are recorded.
func (h *Handler) Metrics() *metrics.Metrics {
	return h.svc.Metrics()
}

// bind decodes the body into req through gin's JSON binding, which also runs
// the installed struct validator. The raw body is returned for handlers that
// read extra fields.
func bind(c *gin.Context, req any) ([]byte, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := binding.JSON.BindBody(body, req); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	return body, nil
}

// Embeddings handles POST /v1/embeddings.
func (h *Handler) Embeddings(c *gin.Context) {
	var req EmbeddingsRequest
	if _, err := bind(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	res, err := h.svc.Embed(c.Request.Context(), &biz.EmbedRequest{
		Input:      req.Input,
		Model:      req.Model,
		Collection: req.Collection,
		Metadata:   req.Metadata,
		ChunkSize:  req.ChunkSize,
		Overlap:    req.Overlap,
		Chunk:      req.Chunk.Ptr(),
		Save:       req.SaveToStore.Ptr(),
		Optimize:   req.OptimizeText.Ptr(),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	if res.Saved {
		response.OK(c, response.Status(res.Message))
		return
	}

	data := make([]EmbeddingObject, len(res.Data))
	for i, e := range res.Data {
		data[i] = EmbeddingObject{Object: objectEmbedding, Embedding: e.Embedding, Index: e.Index}
	}
	list := response.List(data)
	list.Model = res.Model
	list.Usage = &response.Usage{PromptTokens: res.Usage.PromptTokens, TotalTokens: res.Usage.TotalTokens}
	response.OK(c, list)
}

// Search handles POST /v1/search.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	body, err := bind(c, &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	filter, err := mergeFilter(body, req.Filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	results, err := h.svc.Search(c.Request.Context(), &biz.SearchRequest{
		Query:          req.Query,
		Model:          req.Model,
		Collection:     req.Collection,
		TopK:           req.TopK,
		ScoreThreshold: req.ScoreThreshold,
		Filter:         filter,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	data := make([]SearchResultObject, len(results))
	for i, r := range results {
		data[i] = SearchResultObject{Object: objectSearchResult, Score: r.Score, Text: r.Text}
		if len(r.Payload) > 0 {
			data[i].Metadata = r.Payload
		}
	}
	response.OK(c, response.List(data))
}

// mergeFilter adds the unknown scalar top-level fields of body to filter.
// Explicit filter keys win.
func mergeFilter(body []byte, filter map[string]any) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	merged := make(map[string]any, len(filter)+len(raw))
	for k, v := range raw {
		if searchFields[k] {
			continue
		}
		switch v.(type) {
		case string, bool, float64:
			merged[k] = v
		}
	}
	for k, v := range filter {
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil, nil
	}
	return merged, nil
}

// Chunk handles POST /v1/chunk.
func (h *Handler) Chunk(c *gin.Context) {
	var req ChunkRequest
	if _, err := bind(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	chunks, err := h.svc.Chunk(c.Request.Context(), &biz.ChunkRequest{
		Text:      req.Text,
		ChunkSize: req.ChunkSize,
		Overlap:   req.Overlap,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	if chunks == nil {
		chunks = []string{}
	}
	response.OK(c, &ChunksResponse{Object: response.ObjectChunks, Data: chunks})
}

// Optimize handles POST /v1/optimize.
func (h *Handler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if _, err := bind(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	text, err := h.svc.Optimize(c.Request.Context(), &biz.OptimizeRequest{
		Text:            req.Text,
		ReplaceSymbols:  boolValue(req.ReplaceSymbols),
		RemoveStopwords: boolValue(req.RemoveStopwords),
		Stem:            boolValue(req.Stem),
		Lemmatize:       boolValue(req.Lemmatize),
		Language:        req.Language,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, &OptimizeResponse{Object: response.ObjectOptimizedText, Text: text})
}

// Models handles GET /v1/models.
func (h *Handler) Models(c *gin.Context) {
	infos := h.svc.ListModels(c.Request.Context())
	data := make([]ModelObject, len(infos))
	for i, m := range infos {
		data[i] = ModelObject{
			Object:    objectModel,
			ID:        m.ID,
			Provider:  m.Provider,
			Dimension: m.Dimension,
			Loaded:    m.Loaded,
			Default:   m.Default,
		}
	}
	response.OK(c, response.List(data))
}

// Collection handles POST /v1/collection.
func (h *Handler) Collection(c *gin.Context) {
	var req CollectionRequest
	if _, err := bind(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	res, err := h.svc.CreateCollection(c.Request.Context(), &biz.CollectionRequest{
		Name:       req.CollectionName,
		VectorSize: req.VectorSize,
		Distance:   req.Distance,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, &CollectionResponse{
		Object:         response.ObjectCollection,
		CollectionName: res.Name,
		VectorSize:     res.VectorSize,
		Distance:       string(res.Distance),
		Message:        res.Message,
	})
}

// LegacyEmbed handles POST /embed.
func (h *Handler) LegacyEmbed(c *gin.Context) {
	var req LegacyEmbedRequest
	if _, err := bind(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	vec, err := h.svc.LegacyEmbed(c.Request.Context(), req.Text)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, &LegacyEmbedResponse{Embedding: vec})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	name, enabled := h.svc.StoreStatus()
	store := name
	if !enabled {
		store = "disabled"
	}
	response.OK(c, &HealthResponse{Status: "ok", Store: store, Version: app.GetVersion()})
}
