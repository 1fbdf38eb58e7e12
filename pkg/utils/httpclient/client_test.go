package httpclient

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"input":["a"]}`, string(body))
		_, _ = w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer srv.Close()

	var out struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	c := NewClient(time.Second)
	err := c.PostJSON(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer k"},
		map[string]any{"input": []string{"a"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 2}}, out.Embeddings)
}

func TestPostJSON_StatusErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	}))
	defer srv.Close()

	err := NewClient(time.Second).PostJSON(context.Background(), srv.URL, nil, map[string]any{}, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "loading", se.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":`))
	}))
	defer srv.Close()

	var out map[string]any
	err := NewClientWith(srv.Client()).PostJSON(context.Background(), srv.URL, nil, map[string]any{}, &out)
	assert.ErrorContains(t, err, "failed to decode response")
}
