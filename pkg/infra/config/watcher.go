// Package config provides configuration hot reload on top of viper's fsnotify watcher.
package config

import (
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"github.com/spf13/viper"
)

// ChangeHandler is invoked with the re-read viper instance after the config
// file changes.
type ChangeHandler func(v *viper.Viper) error

type subscription struct {
	id      string
	handler ChangeHandler
}

// Watcher dispatches configuration file changes to subscribed handlers in
// subscription order.
type Watcher struct {
	viper    *viper.Viper
	mu       sync.RWMutex
	subs     []subscription
	watching bool
}

// NewWatcher creates a new configuration watcher. The viper instance should
// already have read its config file.
func NewWatcher(v *viper.Viper) *Watcher {
	return &Watcher{viper: v}
}

// Subscribe registers a handler. A handler with the same id is replaced in place.
func (w *Watcher) Subscribe(id string, handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.subs {
		if w.subs[i].id == id {
			w.subs[i].handler = handler
			return
		}
	}
	w.subs = append(w.subs, subscription{id: id, handler: handler})
}

// SubscribeKey registers a handler that only runs when the value stored at
// key differs from the value seen on the previous change.
func (w *Watcher) SubscribeKey(id, key string, fn func(value interface{}) error) {
	var (
		mu   sync.Mutex
		last = w.viper.Get(key)
	)
	w.Subscribe(id, func(v *viper.Viper) error {
		cur := v.Get(key)
		mu.Lock()
		changed := !reflect.DeepEqual(cur, last)
		last = cur
		mu.Unlock()
		if !changed {
			return nil
		}
		return fn(cur)
	})
}

// Unsubscribe removes a handler by id.
func (w *Watcher) Unsubscribe(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.subs {
		if w.subs[i].id == id {
			w.subs = append(w.subs[:i], w.subs[i+1:]...)
			return
		}
	}
}

// Start begins watching the config file. It is a no-op when no config file
// was loaded or when already started.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.watching || w.viper.ConfigFileUsed() == "" {
		w.mu.Unlock()
		return
	}
	w.watching = true
	w.mu.Unlock()

	w.viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Infow("config file changed", "file", e.Name, "op", e.Op.String())
		w.Notify()
	})
	w.viper.WatchConfig()
	logger.Infow("config watcher started", "file", w.viper.ConfigFileUsed())
}

// Notify runs every handler against the current viper state. Handler errors
// are logged and do not stop later handlers.
func (w *Watcher) Notify() {
	w.mu.RLock()
	subs := append([]subscription(nil), w.subs...)
	w.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(w.viper); err != nil {
			logger.Errorw("config change handler failed", "handler", s.id, "error", err.Error())
		}
	}
}

// IsWatching reports whether Start has taken effect.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// HandlerCount returns the number of registered handlers.
func (w *Watcher) HandlerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subs)
}
