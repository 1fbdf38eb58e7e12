package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()
	start := time.Now()

	m.ObserveRequest(OpEmbed, start, nil)
	m.ObserveRequest(OpEmbed, start, errors.New("boom"))
	m.ObserveRequest(OpSearch, start, nil)
	m.AddChunks("hash-384", 3)
	m.AddChunks("hash-384", 0)
	m.AddSaved("memory", 2)
	m.EncodeError("broken")
	m.StoreError(StoreUpsert)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OpEmbed, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OpEmbed, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OpSearch, "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.chunksEmbedded.WithLabelValues("hash-384")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pointsSaved.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.encodeErrors.WithLabelValues("broken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues(StoreUpsert)))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(OpEmbed, time.Now(), nil)
		m.AddChunks("x", 1)
		m.AddSaved("x", 1)
		m.EncodeError("x")
		m.StoreError(StoreSearch)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AddChunks("hash-384", 5)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `embedding_chunks_embedded_total{model="hash-384"} 5`)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.AddSaved("memory", 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.pointsSaved.WithLabelValues("memory")))
}
