package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_SubscribeOrderAndReplace(t *testing.T) {
	w := NewWatcher(viper.New())
	var order []string

	w.Subscribe("a", func(*viper.Viper) error { order = append(order, "a"); return nil })
	w.Subscribe("b", func(*viper.Viper) error { order = append(order, "b"); return errors.New("boom") })
	w.Subscribe("c", func(*viper.Viper) error { order = append(order, "c"); return nil })
	w.Subscribe("a", func(*viper.Viper) error { order = append(order, "a2"); return nil })
	assert.Equal(t, 3, w.HandlerCount())

	w.Notify()
	assert.Equal(t, []string{"a2", "b", "c"}, order)

	w.Unsubscribe("b")
	w.Unsubscribe("missing")
	assert.Equal(t, 2, w.HandlerCount())
}

func TestWatcher_SubscribeKey(t *testing.T) {
	v := viper.New()
	v.Set("middleware.auth.token", "old")
	w := NewWatcher(v)

	var got []interface{}
	w.SubscribeKey("token", "middleware.auth.token", func(val interface{}) error {
		got = append(got, val)
		return nil
	})

	w.Notify()
	assert.Empty(t, got)

	v.Set("middleware.auth.token", "new")
	w.Notify()
	w.Notify()
	assert.Equal(t, []interface{}{"new"}, got)
}

func TestWatcher_StartWithoutConfigFile(t *testing.T) {
	w := NewWatcher(viper.New())
	w.Start()
	assert.False(t, w.IsWatching())
}

func TestWatcher_FileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embedding.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	w := NewWatcher(v)
	var level atomic.Value
	w.SubscribeKey("log-level", "log.level", func(val interface{}) error {
		level.Store(val)
		return nil
	})
	w.Start()
	require.True(t, w.IsWatching())

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	assert.Eventually(t, func() bool {
		return level.Load() == "debug"
	}, 5*time.Second, 50*time.Millisecond)
}
