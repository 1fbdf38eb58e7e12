// Package storage defines the contract shared by backend clients and a
// manager that health checks and closes them as a group.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClientNotFound is returned when no client is registered under a name.
	ErrClientNotFound = errors.New("storage client not found")
	// ErrClientAlreadyExists is returned when a name is registered twice.
	ErrClientAlreadyExists = errors.New("storage client already registered")
	// ErrInvalidClient is returned for an empty name or a nil client.
	ErrInvalidClient = errors.New("invalid storage client")
)

// HealthChecker reports the health of a client. A nil error means healthy.
type HealthChecker func() error

// Client is a connection to an external backend such as redis, qdrant or milvus.
type Client interface {
	// Name returns the backend type, e.g. "redis".
	Name() string
	// Ping checks the connection.
	Ping(ctx context.Context) error
	// Close releases the connection.
	Close() error
	// Health returns a checker bound to a short timeout.
	Health() HealthChecker
}

// HealthStatus is the result of a single health check.
type HealthStatus struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Error   error         `json:"-"`
}
