// Package options contains flags and options for initializing the embedding server.
package options

import (
	"fmt"
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	embeddingsvc "github.com/kart-io/sentinel-embed/internal/embedding"
	"github.com/kart-io/sentinel-embed/pkg/infra/app"
	embeddingopts "github.com/kart-io/sentinel-embed/pkg/options/embedding"
	logopts "github.com/kart-io/sentinel-embed/pkg/options/logger"
	middlewareopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
	milvusopts "github.com/kart-io/sentinel-embed/pkg/options/milvus"
	pipelineopts "github.com/kart-io/sentinel-embed/pkg/options/pipeline"
	qdrantopts "github.com/kart-io/sentinel-embed/pkg/options/qdrant"
	redisopts "github.com/kart-io/sentinel-embed/pkg/options/redis"
	httpopts "github.com/kart-io/sentinel-embed/pkg/options/server/http"
	storeopts "github.com/kart-io/sentinel-embed/pkg/options/store"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MiddlewareOptions contains the middleware chain configuration, including auth.
	MiddlewareOptions *middlewareopts.Options `json:"middleware" mapstructure:"middleware"`

	// EmbeddingOptions contains the model catalogue and embedding cache.
	EmbeddingOptions *embeddingopts.Options `json:"embedding" mapstructure:"embedding"`

	// PipelineOptions contains request defaults.
	PipelineOptions *pipelineopts.Options `json:"pipeline" mapstructure:"pipeline"`

	// StoreOptions selects and configures the vector store.
	StoreOptions *storeopts.Options `json:"store" mapstructure:"store"`

	// QdrantOptions contains Qdrant connection configuration.
	QdrantOptions *qdrantopts.Options `json:"qdrant" mapstructure:"qdrant"`

	// MilvusOptions contains Milvus connection configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// RedisOptions contains the redis connection of the embedding cache.
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:       httpopts.NewOptions(),
		LogOptions:        logopts.NewOptions(),
		MiddlewareOptions: middlewareopts.NewOptions(),
		EmbeddingOptions:  embeddingopts.NewOptions(),
		PipelineOptions:   pipelineopts.NewOptions(),
		StoreOptions:      storeopts.NewOptions(),
		QdrantOptions:     qdrantopts.NewOptions(),
		MilvusOptions:     milvusopts.NewOptions(),
		RedisOptions:      redisopts.NewOptions(),
		ShutdownTimeout:   30 * time.Second,
	}
}

// EnvAliases maps config keys to the plain environment variable names older
// deployments use next to the EMBEDDING_ prefixed ones.
func EnvAliases() map[string][]string {
	return map[string][]string{
		"store.enable":            {"QDRANT_ENABLE"},
		"qdrant.host":             {"QDRANT_HOST"},
		"qdrant.port":             {"QDRANT_PORT"},
		"qdrant.api-key":          {"QDRANT_API_KEY"},
		"middleware.auth.token":   {"API_TOKEN"},
		"store.collection":        {"DEFAULT_COLLECTION"},
		"embedding.default-model": {"MODEL_NAME"},
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss app.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MiddlewareOptions.AddFlags(fss.FlagSet("middleware"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"))
	o.PipelineOptions.AddFlags(fss.FlagSet("pipeline"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	o.QdrantOptions.AddFlags(fss.FlagSet("qdrant"))
	o.MilvusOptions.AddFlags(fss.FlagSet("milvus"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))

	// misc flags
	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := o.LogOptions.Complete(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := o.MiddlewareOptions.Complete(); err != nil {
		return fmt.Errorf("middleware: %w", err)
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.StoreOptions.Complete(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := o.QdrantOptions.Complete(); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 30 * time.Second
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.MiddlewareOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.PipelineOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	if o.StoreOptions.Enable {
		switch o.StoreOptions.Backend {
		case storeopts.BackendQdrant:
			errs = append(errs, o.QdrantOptions.Validate()...)
		case storeopts.BackendMilvus:
			errs = append(errs, o.MilvusOptions.Validate()...)
		}
	}
	if o.EmbeddingOptions.Cache != nil && o.EmbeddingOptions.Cache.Enable {
		errs = append(errs, o.RedisOptions.Validate()...)
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds an embeddingsvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*embeddingsvc.Config, error) {
	return &embeddingsvc.Config{
		HTTPOptions:       o.HTTPOptions,
		LogOptions:        o.LogOptions,
		MiddlewareOptions: o.MiddlewareOptions,
		EmbeddingOptions:  o.EmbeddingOptions,
		PipelineOptions:   o.PipelineOptions,
		StoreOptions:      o.StoreOptions,
		QdrantOptions:     o.QdrantOptions,
		MilvusOptions:     o.MilvusOptions,
		RedisOptions:      o.RedisOptions,
		ShutdownTimeout:   o.ShutdownTimeout,
	}, nil
}
