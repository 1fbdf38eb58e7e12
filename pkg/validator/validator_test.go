package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectionRequest struct {
	CollectionName string `json:"collection_name" validate:"required,collection"`
	VectorSize     int    `json:"vector_size" validate:"omitempty,min=1,max=65536"`
	Distance       string `json:"distance" validate:"omitempty,distance"`
	Language       string `json:"language" validate:"omitempty,language"`
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     collectionRequest
		wantErr bool
		field   string
	}{
		{"valid", collectionRequest{CollectionName: "documents", VectorSize: 384, Distance: "COSINE"}, false, ""},
		{"lowercase distance", collectionRequest{CollectionName: "docs_v2", Distance: "dot"}, false, ""},
		{"euclidean alias", collectionRequest{CollectionName: "docs-v2", Distance: "Euclidean"}, false, ""},
		{"missing name", collectionRequest{}, true, "collection_name"},
		{"bad name", collectionRequest{CollectionName: "bad name!"}, true, "collection_name"},
		{"bad distance", collectionRequest{CollectionName: "docs", Distance: "manhattan"}, true, "distance"},
		{"bad language", collectionRequest{CollectionName: "docs", Language: "klingon"}, true, "language"},
		{"vector too large", collectionRequest{CollectionName: "docs", VectorSize: 1 << 20}, true, "vector_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateWithLang(tt.req, LangEN)
			if !tt.wantErr {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			assert.Equal(t, tt.field, errs.Errors[0].Field)
			assert.NotEmpty(t, errs.First())
		})
	}
}

func TestValidator_Translations(t *testing.T) {
	v := New()

	en := v.ValidateWithLang(collectionRequest{CollectionName: "docs", Distance: "x"}, LangEN)
	require.NotNil(t, en)
	assert.Equal(t, "distance must be one of COSINE, EUCLID or DOT", en.First())

	zh := v.ValidateWithLang(collectionRequest{CollectionName: "docs", Distance: "x"}, LangZH)
	require.NotNil(t, zh)
	assert.Contains(t, zh.First(), "COSINE")
}

func TestGinValidator(t *testing.T) {
	g := NewGinValidator(New())

	assert.NoError(t, g.ValidateStruct(&collectionRequest{CollectionName: "docs"}))
	assert.NoError(t, g.ValidateStruct([]string{"not a struct"}))

	err := g.ValidateStruct(&collectionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection_name")
	assert.NotNil(t, g.Engine())
}

func TestInstallGin_BindBodyValidates(t *testing.T) {
	InstallGin()
	_, ok := binding.Validator.(*GinValidator)
	require.True(t, ok)

	var req collectionRequest
	err := binding.JSON.BindBody([]byte(`{"collection_name":"bad name"}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection_name")

	require.NoError(t, binding.JSON.BindBody([]byte(`{"collection_name":"docs"}`), &req))
	assert.Equal(t, "docs", req.CollectionName)
}
