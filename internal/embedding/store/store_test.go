package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/sentinel-embed/pkg/component/sqlite"
	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
)

func float32Ptr(v float32) *float32 { return &v }

// backends returns a fresh instance of every in-process backend.
func backends(t *testing.T) map[string]VectorStore {
	t.Helper()

	sq, err := NewSQLiteStore(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]VectorStore{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func seed(t *testing.T, s VectorStore, collection string, metric Distance) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, collection, 3, metric))
	require.NoError(t, s.Upsert(ctx, collection, []*Point{
		NewPoint("a", []float32{1, 0, 0}, "alpha", map[string]any{"lang": "en", "page": 1}),
		NewPoint("b", []float32{0.9, 0.1, 0}, "beta", map[string]any{"lang": "id", "page": 2}),
		NewPoint("c", []float32{0, 1, 0}, "gamma", map[string]any{"lang": "en", "page": 3, "draft": true}),
	}))
}

func TestStores_SearchOrdering(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, "docs", Cosine)

			results, err := s.Search(context.Background(), "docs", &SearchQuery{
				Vector: []float32{1, 0, 0},
				TopK:   2,
			})
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, "alpha", results[0].Text)
			assert.Equal(t, "beta", results[1].Text)
			assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
			assert.NotContains(t, results[0].Payload, PayloadText)
			assert.Equal(t, "en", results[0].Payload["lang"])
		})
	}
}

func TestStores_Filter(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, "docs", Cosine)
			ctx := context.Background()

			results, err := s.Search(ctx, "docs", &SearchQuery{
				Vector: []float32{1, 0, 0},
				TopK:   10,
				Filter: map[string]any{"lang": "en"},
			})
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, "alpha", results[0].Text)
			assert.Equal(t, "gamma", results[1].Text)

			results, err = s.Search(ctx, "docs", &SearchQuery{
				Vector: []float32{1, 0, 0},
				TopK:   10,
				Filter: map[string]any{"page": float64(2)},
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "beta", results[0].Text)

			results, err = s.Search(ctx, "docs", &SearchQuery{
				Vector: []float32{1, 0, 0},
				TopK:   10,
				Filter: map[string]any{"draft": true, "lang": "en"},
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "gamma", results[0].Text)
		})
	}
}

func TestStores_ScoreThreshold(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, "docs", Cosine)

			results, err := s.Search(context.Background(), "docs", &SearchQuery{
				Vector:         []float32{1, 0, 0},
				TopK:           3,
				ScoreThreshold: float32Ptr(0.95),
			})
			require.NoError(t, err)
			require.Len(t, results, 2)
			for _, r := range results {
				assert.GreaterOrEqual(t, r.Score, float32(0.95))
			}
		})
	}
}

func TestStores_EuclidLowerIsBetter(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s, "docs", Euclid)

			results, err := s.Search(context.Background(), "docs", &SearchQuery{
				Vector:         []float32{1, 0, 0},
				TopK:           3,
				ScoreThreshold: float32Ptr(0.5),
			})
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, "alpha", results[0].Text)
			assert.InDelta(t, 0, results[0].Score, 1e-6)
			assert.Equal(t, "beta", results[1].Text)
		})
	}
}

func TestStores_SearchMissingCollection(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			results, err := s.Search(context.Background(), "nope", &SearchQuery{Vector: []float32{1, 0}, TopK: 3})
			require.NoError(t, err)
			assert.Empty(t, results)
			assert.NotNil(t, results)
		})
	}
}

func TestStores_UpsertOverwritesAndKeepsText(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.EnsureCollection(ctx, "docs", 2, Cosine))
			require.NoError(t, s.EnsureCollection(ctx, "docs", 2, Cosine))

			// Caller metadata carrying a "text" key never replaces the chunk text.
			p := NewPoint("p1", []float32{1, 0}, "real text", map[string]any{"text": "spoofed", "k": "v1"})
			require.NoError(t, s.Upsert(ctx, "docs", []*Point{p}))
			require.NoError(t, s.Upsert(ctx, "docs", []*Point{
				NewPoint("p1", []float32{1, 0}, "second text", map[string]any{"k": "v2"}),
			}))

			results, err := s.Search(ctx, "docs", &SearchQuery{Vector: []float32{1, 0}, TopK: 10})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "p1", results[0].ID)
			assert.Equal(t, "second text", results[0].Text)
			assert.Equal(t, "v2", results[0].Payload["k"])
		})
	}
}

func TestStores_TwoChunksTwoPoints(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.EnsureCollection(ctx, "docs", 2, Cosine))

			id1, id2 := uuid.NewString(), uuid.NewString()
			require.NoError(t, s.Upsert(ctx, "docs", []*Point{NewPoint(id1, []float32{1, 0}, "first chunk", nil)}))
			require.NoError(t, s.Upsert(ctx, "docs", []*Point{NewPoint(id2, []float32{0, 1}, "second chunk", nil)}))

			results, err := s.Search(ctx, "docs", &SearchQuery{Vector: []float32{1, 1}, TopK: 10})
			require.NoError(t, err)
			require.Len(t, results, 2)

			texts := map[string]string{}
			for _, r := range results {
				texts[r.ID] = r.Text
			}
			assert.Equal(t, map[string]string{id1: "first chunk", id2: "second chunk"}, texts)
		})
	}
}

func TestStores_DimensionMismatch(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.EnsureCollection(ctx, "docs", 3, Cosine))

			err := s.Upsert(ctx, "docs", []*Point{NewPoint("x", []float32{1, 2}, "t", nil)})
			assert.ErrorIs(t, err, ErrDimensionMismatch)

			_, err = s.Search(ctx, "docs", &SearchQuery{Vector: []float32{1}, TopK: 1})
			assert.ErrorIs(t, err, ErrDimensionMismatch)
		})
	}
}

func TestMemoryStore_UpsertMissingCollection(t *testing.T) {
	s := NewMemoryStore()
	err := s.Upsert(context.Background(), "none", []*Point{NewPoint("x", []float32{1}, "t", nil)})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.Equal(t, 0, s.Len("none"))
}

func TestDisabledStore(t *testing.T) {
	var s VectorStore = DisabledStore{}
	ctx := context.Background()

	assert.False(t, s.Enabled())
	assert.NoError(t, s.EnsureCollection(ctx, "docs", 3, Cosine))
	assert.NoError(t, s.Upsert(ctx, "docs", []*Point{NewPoint("x", []float32{1}, "t", nil)}))

	results, err := s.Search(ctx, "docs", &SearchQuery{Vector: []float32{1}, TopK: 3})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, s.Close())
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		in      string
		want    Distance
		wantErr bool
	}{
		{"", Cosine, false},
		{"cosine", Cosine, false},
		{"L2", Euclid, false},
		{"euclidean", Euclid, false},
		{"IP", Dot, false},
		{"Dot", Dot, false},
		{"manhattan", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDistance(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDistance)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, ValidateFilter(nil))
	assert.NoError(t, ValidateFilter(map[string]any{"a": "x", "b": 1, "c": 2.5, "d": false}))
	assert.ErrorIs(t, ValidateFilter(map[string]any{"a": []any{1}}), ErrInvalidFilter)
	assert.ErrorIs(t, ValidateFilter(map[string]any{"a": map[string]any{}}), ErrInvalidFilter)
	assert.ErrorIs(t, ValidateFilter(map[string]any{"a": nil}), ErrInvalidFilter)
	assert.ErrorIs(t, ValidateFilter(map[string]any{"": "x"}), ErrInvalidFilter)
}

func TestMatchFilter(t *testing.T) {
	payload := map[string]any{"n": float64(3), "s": "x", "b": true}
	assert.True(t, MatchFilter(payload, nil))
	assert.True(t, MatchFilter(payload, map[string]any{"n": 3}))
	assert.True(t, MatchFilter(payload, map[string]any{"n": int64(3), "s": "x", "b": true}))
	assert.False(t, MatchFilter(payload, map[string]any{"n": "3"}))
	assert.False(t, MatchFilter(payload, map[string]any{"missing": "x"}))
	assert.False(t, MatchFilter(payload, map[string]any{"b": false}))
}

func TestRank_TruncatesBeforeThreshold(t *testing.T) {
	results := []*SearchResult{
		{ID: "1", Score: 0.2}, {ID: "2", Score: 0.9}, {ID: "3", Score: 0.5},
	}
	got := rank(results, &SearchQuery{TopK: 2, ScoreThreshold: float32Ptr(0.6)}, Cosine)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by default", func(t *testing.T) {
		s := New(ctx, &Config{Store: storeopts.NewOptions()}, nil)
		assert.False(t, s.Enabled())
	})

	t.Run("memory", func(t *testing.T) {
		opts := storeopts.NewOptions()
		opts.Enable = true
		opts.Backend = storeopts.BackendMemory
		s := New(ctx, &Config{Store: opts}, nil)
		assert.True(t, s.Enabled())
		assert.Equal(t, "memory", s.Name())
	})

	t.Run("sqlite registers client", func(t *testing.T) {
		opts := storeopts.NewOptions()
		opts.Enable = true
		opts.Backend = storeopts.BackendSQLite
		opts.SQLitePath = sqlite.MemoryPath
		mgr := storage.NewManager(nil)
		s := New(ctx, &Config{Store: opts}, mgr)
		t.Cleanup(func() { _ = s.Close() })
		assert.Equal(t, "sqlite", s.Name())
		assert.Equal(t, []string{"sqlite"}, mgr.List())
	})

	t.Run("unknown backend degrades", func(t *testing.T) {
		opts := storeopts.NewOptions()
		opts.Enable = true
		opts.Backend = "faiss"
		s := New(ctx, &Config{Store: opts}, nil)
		assert.False(t, s.Enabled())
	})
}
