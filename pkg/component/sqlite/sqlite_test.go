package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, MemoryPath, &note{})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "sqlite", c.Name())
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Health()())

	require.NoError(t, c.DB().Create(&note{Body: "hello"}).Error)
	var got note
	require.NoError(t, c.DB().First(&got).Error)
	assert.Equal(t, "hello", got.Body)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	c, err := New(context.Background(), path, &note{})
	require.NoError(t, err)
	assert.Equal(t, path, c.Path())
	require.NoError(t, c.Close())
	assert.FileExists(t, path)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.Error(t, err)
}
