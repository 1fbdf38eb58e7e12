package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kart-io/sentinel-embed/pkg/infra/pool"
)

// Manager manages multiple storage clients and provides centralized
// health checking and lifecycle management. It is safe for concurrent use.
//
//	mgr := storage.NewManager(nil)
//	_ = mgr.Register("redis", redisClient)
//	statuses := mgr.HealthCheckAll(ctx)
//	defer mgr.CloseAll()
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client
	pool    *pool.Pool
}

// NewManager creates a manager. Health checks run on p when it is non-nil.
func NewManager(p *pool.Pool) *Manager {
	return &Manager{
		clients: make(map[string]Client),
		pool:    p,
	}
}

// Register registers a client under a unique name.
func (m *Manager) Register(name string, client Client) error {
	if name == "" || client == nil {
		return fmt.Errorf("%w: name=%q", ErrInvalidClient, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[name]; exists {
		return fmt.Errorf("%w: %s", ErrClientAlreadyExists, name)
	}
	m.clients[name] = client
	return nil
}

// Get retrieves a client by name.
func (m *Manager) Get(name string) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, ok := m.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, name)
	}
	return client, nil
}

// List returns the registered client names in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll pings every registered client concurrently.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	m.mu.RLock()
	clients := make(map[string]Client, len(m.clients))
	for name, client := range m.clients {
		clients[name] = client
	}
	m.mu.RUnlock()

	statuses := make(map[string]HealthStatus, len(clients))
	var mu sync.Mutex

	tasks := make([]func(context.Context), 0, len(clients))
	for name, client := range clients {
		tasks = append(tasks, func(ctx context.Context) {
			start := time.Now()
			err := client.Ping(ctx)
			status := HealthStatus{
				Name:    name,
				Healthy: err == nil,
				Latency: time.Since(start),
				Error:   err,
			}
			mu.Lock()
			statuses[name] = status
			mu.Unlock()
		})
	}

	if m.pool != nil {
		m.pool.RunAll(ctx, tasks...)
		return statuses
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		go func() {
			defer wg.Done()
			task(ctx)
		}()
	}
	wg.Wait()
	return statuses
}

// CloseAll closes every client even if some fail and returns the first error.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, client := range m.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close client '%s': %w", name, err)
		}
		delete(m.clients, name)
	}
	return firstErr
}
