package redis

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	options "github.com/kart-io/sentinel-embed/pkg/options/redis"
)

func newOptions(t *testing.T, mr *miniredis.Miniredis) *options.Options {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	opts := options.NewOptions()
	opts.Host = mr.Host()
	opts.Port = port
	return opts
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := New(ctx, newOptions(t, mr))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "redis", c.Name())
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Health()())

	require.NoError(t, c.Client().Set(ctx, "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := newOptions(t, mr)
	mr.Close()

	_, err := New(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping redis")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)

	opts := options.NewOptions()
	opts.Host = ""
	_, err = New(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis options")
}
