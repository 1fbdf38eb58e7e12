package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := NewOptions()
	assert.False(t, o.Enable)
	assert.Equal(t, BackendQdrant, o.Backend)
	assert.Equal(t, "embeddings", o.Collection)
	assert.Equal(t, 384, o.VectorSize)
	assert.Equal(t, "COSINE", o.Distance)
	assert.Empty(t, o.Validate())
}

func TestCompleteNormalizesCase(t *testing.T) {
	o := NewOptions()
	o.Backend = " SQLite "
	o.Distance = "dot"
	require.NoError(t, o.Complete())
	assert.Equal(t, BackendSQLite, o.Backend)
	assert.Equal(t, "DOT", o.Distance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		errs   int
	}{
		{"unknown backend", func(o *Options) { o.Backend = "chroma" }, 1},
		{"empty collection", func(o *Options) { o.Collection = "" }, 1},
		{"bad vector size", func(o *Options) { o.VectorSize = 0 }, 1},
		{"bad distance", func(o *Options) { o.Distance = "manhattan" }, 1},
		{"sqlite without path", func(o *Options) { o.Backend = BackendSQLite; o.SQLitePath = "" }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			assert.Len(t, o.Validate(), tt.errs)
		})
	}
}
