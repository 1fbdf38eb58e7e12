//go:build !milvus

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
)

func TestQdrantFilterAndPayload(t *testing.T) {
	filter, err := toQdrantFilter(map[string]any{"lang": "en", "page": float64(2), "score": 0.5, "ok": true})
	require.NoError(t, err)
	assert.Len(t, filter.GetMust(), 4)

	_, err = toQdrantFilter(map[string]any{"bad": nil})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	payload := MergePayload(map[string]any{
		"n":    float64(7),
		"f":    1.5,
		"b":    true,
		"list": []any{"a", float64(1)},
		"obj":  map[string]any{"k": "v"},
	}, "chunk")
	back := fromQdrantPayload(toQdrantPayload(payload))
	assert.Equal(t, "chunk", back[PayloadText])
	assert.Equal(t, int64(7), back["n"])
	assert.Equal(t, 1.5, back["f"])
	assert.Equal(t, true, back["b"])
	assert.Equal(t, []any{"a", int64(1)}, back["list"])
	assert.Equal(t, map[string]any{"k": "v"}, back["obj"])
}

func TestBackends_Default(t *testing.T) {
	assert.Equal(t, []string{"memory", "qdrant", "sqlite"}, Backends())
}

func TestNew_MilvusNotCompiledDegrades(t *testing.T) {
	opts := storeopts.NewOptions()
	opts.Enable = true
	opts.Backend = storeopts.BackendMilvus
	s := New(context.Background(), &Config{Store: opts}, nil)
	assert.False(t, s.Enabled())
	assert.Equal(t, "disabled", s.Name())
}
