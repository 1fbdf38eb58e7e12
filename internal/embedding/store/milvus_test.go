//go:build milvus

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExpr(t *testing.T) {
	expr, err := FilterExpr(nil)
	require.NoError(t, err)
	assert.Empty(t, expr)

	expr, err = FilterExpr(map[string]any{"lang": "en", "page": 2, "draft": false, "text": `say "hi"`})
	require.NoError(t, err)
	assert.Equal(t,
		`metadata["draft"] == false and metadata["lang"] == "en" and metadata["page"] == 2 and text == "say \"hi\""`,
		expr)

	_, err = FilterExpr(map[string]any{"bad": []any{}})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestFilterExpr_EscapesOnlyQuoteAndBackslash(t *testing.T) {
	expr, err := FilterExpr(map[string]any{"path": `C:\docs`, "title": "café\tnoir", `we"ird`: "ok"})
	require.NoError(t, err)
	assert.Equal(t,
		`metadata["path"] == "C:\\docs" and metadata["title"] == "café`+"\t"+`noir" and metadata["we\"ird"] == "ok"`,
		expr)
}

func TestQuoteLiteral(t *testing.T) {
	tests := map[string]string{
		"":        `""`,
		"plain":   `"plain"`,
		`a"b`:     `"a\"b"`,
		`a\b`:     `"a\\b"`,
		"日本":      `"日本"`,
		"line\nx": "\"line\nx\"",
	}
	for in, want := range tests {
		assert.Equal(t, want, quoteLiteral(in), in)
	}
}

func TestBackends_Milvus(t *testing.T) {
	assert.Equal(t, []string{"memory", "milvus", "sqlite"}, Backends())
}
