package handler

import (
	"bytes"
	"fmt"

	"github.com/kart-io/sentinel-embed/pkg/infra/app"
	"github.com/kart-io/sentinel-embed/pkg/utils/json"
)

var jsonNull = []byte("null")

// FlexBool decodes a JSON boolean or a boolean string such as "true" or "False".
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*b = FlexBool(val)
		return nil
	case string:
		parsed, ok := app.ParseBool(val)
		if !ok {
			return fmt.Errorf("invalid boolean %q", val)
		}
		*b = FlexBool(parsed)
		return nil
	default:
		return fmt.Errorf("expected a boolean, got %s", data)
	}
}

// Ptr returns the value as *bool, nil for a nil receiver.
func (b *FlexBool) Ptr() *bool {
	if b == nil {
		return nil
	}
	v := bool(*b)
	return &v
}

// StringOrList decodes a JSON string or an array of strings.
type StringOrList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringOrList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*s = nil
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		*s = StringOrList{val}
		return nil
	case []any:
		out := make(StringOrList, len(val))
		for i, item := range val {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("input[%d] must be a string", i)
			}
			out[i] = str
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("input must be a string or a list of strings")
	}
}

// EmbeddingsRequest is the body of POST /v1/embeddings.
type EmbeddingsRequest struct {
	Input        StringOrList   `json:"input"`
	Model        string         `json:"model"`
	Collection   string         `json:"collection" validate:"omitempty,collection"`
	Metadata     map[string]any `json:"metadata"`
	ChunkSize    *int           `json:"chunk_size"`
	Overlap      *int           `json:"overlap"`
	Chunk        *FlexBool      `json:"chunk"`
	SaveToStore  *FlexBool      `json:"save_to_store"`
	OptimizeText *FlexBool      `json:"optimize_text"`
}

// EmbeddingObject is one item of the embeddings list.
type EmbeddingObject struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// SearchRequest is the body of POST /v1/search. Unknown scalar fields of
// the body are merged into Filter.
type SearchRequest struct {
	Query          string         `json:"query"`
	Model          string         `json:"model"`
	Collection     string         `json:"collection" validate:"omitempty,collection"`
	TopK           *int           `json:"top_k"`
	ScoreThreshold *float32       `json:"score_threshold"`
	Filter         map[string]any `json:"filter"`
}

// searchFields are the keys of SearchRequest that never become filters.
var searchFields = map[string]bool{
	"query":           true,
	"model":           true,
	"collection":      true,
	"top_k":           true,
	"score_threshold": true,
	"filter":          true,
}

// SearchResultObject is one search hit.
type SearchResultObject struct {
	Object   string         `json:"object"`
	Score    float32        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChunkRequest is the body of POST /v1/chunk.
type ChunkRequest struct {
	Text      string `json:"text"`
	ChunkSize *int   `json:"chunk_size"`
	Overlap   *int   `json:"overlap"`
}

// ChunksResponse is the response of POST /v1/chunk.
type ChunksResponse struct {
	Object string   `json:"object"`
	Data   []string `json:"data"`
}

// OptimizeRequest is the body of POST /v1/optimize.
type OptimizeRequest struct {
	Text            string    `json:"text"`
	ReplaceSymbols  *FlexBool `json:"replace_symbols"`
	RemoveStopwords *FlexBool `json:"remove_stopwords"`
	Stem            *FlexBool `json:"stem"`
	Lemmatize       *FlexBool `json:"lemmatize"`
	Language        string    `json:"language" validate:"omitempty,language"`
}

// OptimizeResponse is the response of POST /v1/optimize.
type OptimizeResponse struct {
	Object string `json:"object"`
	Text   string `json:"text"`
}

// ModelObject is one entry of GET /v1/models.
type ModelObject struct {
	Object    string `json:"object"`
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	Dimension int    `json:"dimension,omitempty"`
	Loaded    bool   `json:"loaded"`
	Default   bool   `json:"default"`
}

// CollectionRequest is the body of POST /v1/collection.
type CollectionRequest struct {
	CollectionName string `json:"collection_name" validate:"required,collection"`
	VectorSize     *int   `json:"vector_size" validate:"omitempty,gt=0"`
	Distance       string `json:"distance" validate:"omitempty,distance"`
}

// CollectionResponse is the response of POST /v1/collection.
type CollectionResponse struct {
	Object         string `json:"object"`
	CollectionName string `json:"collection_name"`
	VectorSize     int    `json:"vector_size"`
	Distance       string `json:"distance"`
	Message        string `json:"message"`
}

// LegacyEmbedRequest is the body of POST /embed.
type LegacyEmbedRequest struct {
	Text string `json:"text"`
}

// LegacyEmbedResponse is the response of POST /embed.
type LegacyEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// HealthResponse is the response of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Version string `json:"version"`
}

func boolValue(b *FlexBool) bool {
	return b != nil && bool(*b)
}
