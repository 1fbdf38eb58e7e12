package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kart-io/logger"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 30 * time.Second

// Manager starts servers together and stops them in reverse order.
type Manager struct {
	servers         []Runnable
	shutdownTimeout time.Duration
	mu              sync.Mutex
	started         []Runnable
}

// NewManager creates a manager for the given servers.
func NewManager(shutdownTimeout time.Duration, servers ...Runnable) *Manager {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &Manager{servers: servers, shutdownTimeout: shutdownTimeout}
}

// Add appends a server. It has no effect once the manager is started.
func (m *Manager) Add(s Runnable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers = append(m.servers, s)
}

// Start starts every server. When one fails, the ones already running are stopped.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.started) > 0 {
		return fmt.Errorf("server manager already started")
	}

	for _, s := range m.servers {
		if err := s.Start(ctx); err != nil {
			m.stopLocked(ctx)
			return fmt.Errorf("failed to start %s server: %w", s.Name(), err)
		}
		logger.Infow("Server started", "name", s.Name())
		m.started = append(m.started, s)
	}
	return nil
}

// Stop stops the started servers in reverse start order.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		s := m.started[i]
		if err := s.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s server: %w", s.Name(), err))
			continue
		}
		logger.Infow("Server stopped", "name", s.Name())
	}
	m.started = nil
	return utilerrors.NewAggregate(errs)
}

// Run starts the servers and blocks until ctx is done, SIGINT or SIGTERM
// arrives, or a server fails. It then shuts everything down gracefully.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(m.servers))
	for _, s := range m.servers {
		go func(s Runnable) {
			if err, ok := <-s.Err(); ok && err != nil {
				errCh <- fmt.Errorf("%s server: %w", s.Name(), err)
			}
		}(s)
	}

	var runErr error
	select {
	case <-sigCtx.Done():
		logger.Info("Shutting down servers...")
	case runErr = <-errCh:
		logger.Errorw("Server failed, shutting down", "error", runErr.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.shutdownTimeout)
	defer cancel()
	if err := m.Stop(shutdownCtx); err != nil {
		return utilerrors.NewAggregate([]error{runErr, err})
	}
	return runErr
}
