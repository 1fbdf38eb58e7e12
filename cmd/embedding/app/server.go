// Package app provides the embedding server application.
package app

import (
	"context"
	"fmt"

	"github.com/kart-io/sentinel-embed/cmd/embedding/app/options"
	embeddingsvc "github.com/kart-io/sentinel-embed/internal/embedding"
	"github.com/kart-io/sentinel-embed/pkg/infra/app"
)

const commandDesc = `Embedding Server

Turns text into dense vectors and optionally stores them in a vector
database for similarity search.

This server provides:
  - OpenAI-style /v1/embeddings and /v1/models endpoints
  - Word-window chunking and text normalization
  - Similarity search with metadata filters
  - Qdrant, Milvus, sqlite or in-memory vector storage
  - Static bearer token authentication

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: EMBEDDING_, plus QDRANT_HOST, API_TOKEN, ...)
  - .env file
  - Configuration file (YAML)
  - Default values (lowest priority)`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	return newApp(context.Background())
}

// newApp builds the App; the server stops when ctx is done.
func newApp(ctx context.Context) *app.App {
	opts := options.NewServerOptions()
	var application *app.App
	application = app.NewApp(
		app.WithName(embeddingsvc.Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithEnvAliases(options.EnvAliases()),
		app.WithRunFunc(func() error {
			return run(ctx, opts, application)
		}),
	)
	return application
}

// run builds the server from the loaded options and blocks until shutdown.
func run(ctx context.Context, opts *options.ServerOptions, a *app.App) error {
	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Viper = a.Viper()

	server, err := cfg.NewServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return server.Run(ctx)
}
