// Package qdrant wraps the Qdrant gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kart-io/sentinel-embed/pkg/component/storage"
	qdrantopts "github.com/kart-io/sentinel-embed/pkg/options/qdrant"
)

// Client wraps the Qdrant SDK client and implements storage.Client.
type Client struct {
	client *qdrant.Client
	opts   *qdrantopts.Options
}

var _ storage.Client = (*Client)(nil)

// New creates a client and verifies the server answers a health check.
func New(ctx context.Context, opts *qdrantopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("qdrant options is nil")
	}

	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	client := &Client{client: c, opts: opts}

	pingCtx, cancel := client.withTimeout(ctx)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", opts.Addr(), err)
	}

	return client, nil
}

// Name returns the storage type identifier.
func (c *Client) Name() string {
	return "qdrant"
}

// Ping runs a Qdrant health check.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.HealthCheck(ctx)
	return err
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Health returns a checker bound to the configured timeout.
func (c *Client) Health() storage.HealthChecker {
	return func() error {
		ctx, cancel := c.withTimeout(context.Background())
		defer cancel()
		return c.Ping(ctx)
	}
}

// RawClient returns the underlying Qdrant client.
func (c *Client) RawClient() *qdrant.Client {
	return c.client
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.opts.Timeout
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.Timeout)
}
