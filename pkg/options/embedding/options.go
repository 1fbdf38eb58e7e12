// Package embedding provides the model catalogue and embedding cache options.
package embedding

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-embed/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// DefaultModel is the model used when a request names none.
const DefaultModel = "all-MiniLM-L6-v2"

// FallbackModel serves as the default when the configured default model
// has no credentials. It runs locally.
const FallbackModel = "hash-384"

// HuggingFaceKeyEnv supplies the api_key of huggingface models that set none.
const HuggingFaceKeyEnv = "HF_API_KEY"

// ModelOptions describes one selectable model.
type ModelOptions struct {
	// ID is the model name clients send in the "model" field.
	ID string `json:"id" mapstructure:"id"`

	// Provider is the registered embedding provider, e.g. huggingface, ollama, openai or hash.
	Provider string `json:"provider" mapstructure:"provider"`

	// Config is handed to the provider factory unchanged.
	Config map[string]any `json:"config,omitempty" mapstructure:"config"`
}

// CacheOptions configures the redis embedding cache.
type CacheOptions struct {
	Enable    bool          `json:"enable" mapstructure:"enable"`
	TTL       time.Duration `json:"ttl" mapstructure:"ttl"`
	KeyPrefix string        `json:"key-prefix" mapstructure:"key-prefix"`
}

// Options contains the embedding model configuration.
type Options struct {
	// DefaultModel is used when a request omits "model".
	DefaultModel string `json:"default-model" mapstructure:"default-model"`

	// Models lists every selectable model.
	Models []ModelOptions `json:"models" mapstructure:"models"`

	// Preload loads every model at startup instead of on first use.
	Preload bool `json:"preload" mapstructure:"preload"`

	// PreloadWorkers bounds concurrent model loads during preload.
	PreloadWorkers int `json:"preload-workers" mapstructure:"preload-workers"`

	// Cache configures the redis embedding cache.
	Cache *CacheOptions `json:"cache" mapstructure:"cache"`

	// FallbackFrom is set by Complete to the default model it replaced.
	FallbackFrom string `json:"-" mapstructure:"-"`
}

// DefaultModels returns the built-in model catalogue.
func DefaultModels() []ModelOptions {
	return []ModelOptions{
		{
			ID:       DefaultModel,
			Provider: "huggingface",
			Config: map[string]any{
				"embed_model": "sentence-transformers/all-MiniLM-L6-v2",
				"dimension":   384,
			},
		},
		{
			ID:       "hash-384",
			Provider: "hash",
			Config:   map[string]any{"dimension": 384},
		},
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		DefaultModel:   DefaultModel,
		Models:         DefaultModels(),
		PreloadWorkers: 4,
		Cache: &CacheOptions{
			Enable:    false,
			TTL:       24 * time.Hour,
			KeyPrefix: "emb:",
		},
	}
}

// AddFlags adds flags to the flagset. Models are configured through the config file.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "embedding."
	fs.StringVar(&o.DefaultModel, p+"default-model", o.DefaultModel, "Model used when a request names none.")
	fs.BoolVar(&o.Preload, p+"preload", o.Preload, "Load every configured model at startup.")
	fs.IntVar(&o.PreloadWorkers, p+"preload-workers", o.PreloadWorkers, "Concurrent model loads during preload.")
	fs.BoolVar(&o.Cache.Enable, p+"cache.enable", o.Cache.Enable, "Cache embeddings in redis.")
	fs.DurationVar(&o.Cache.TTL, p+"cache.ttl", o.Cache.TTL, "Expiry of cached embeddings.")
	fs.StringVar(&o.Cache.KeyPrefix, p+"cache.key-prefix", o.Cache.KeyPrefix, "Key prefix of cached embeddings.")
}

// Model returns the options of the model with the given id.
func (o *Options) Model(id string) (ModelOptions, bool) {
	for _, m := range o.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelOptions{}, false
}

// Complete fills huggingface api keys from HF_API_KEY. A default model that
// still lacks one is replaced by FallbackModel when that model is configured.
func (o *Options) Complete() error {
	key := os.Getenv(HuggingFaceKeyEnv)
	for i := range o.Models {
		m := &o.Models[i]
		if m.Provider != "huggingface" || key == "" || hasAPIKey(m.Config) {
			continue
		}
		cfg := make(map[string]any, len(m.Config)+1)
		for k, v := range m.Config {
			cfg[k] = v
		}
		cfg["api_key"] = key
		m.Config = cfg
	}

	def, ok := o.Model(o.DefaultModel)
	if !ok || def.Provider != "huggingface" || hasAPIKey(def.Config) {
		return nil
	}
	if _, ok := o.Model(FallbackModel); ok {
		o.FallbackFrom = o.DefaultModel
		o.DefaultModel = FallbackModel
	}
	return nil
}

func hasAPIKey(cfg map[string]any) bool {
	v, _ := cfg["api_key"].(string)
	return v != ""
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if len(o.Models) == 0 {
		errs = append(errs, fmt.Errorf("embedding.models cannot be empty"))
	}
	seen := make(map[string]bool, len(o.Models))
	for i, m := range o.Models {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("embedding.models[%d].id cannot be empty", i))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("embedding.models[%d]: duplicate model id %q", i, m.ID))
		}
		seen[m.ID] = true
		if m.Provider == "" {
			errs = append(errs, fmt.Errorf("embedding.models[%d].provider cannot be empty", i))
		}
	}
	if o.DefaultModel == "" {
		errs = append(errs, fmt.Errorf("embedding.default-model cannot be empty"))
	} else if len(o.Models) > 0 && !seen[o.DefaultModel] {
		errs = append(errs, fmt.Errorf("embedding.default-model %q is not a configured model", o.DefaultModel))
	}
	if o.PreloadWorkers <= 0 {
		errs = append(errs, fmt.Errorf("embedding.preload-workers must be positive"))
	}
	if o.Cache != nil && o.Cache.Enable && o.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("embedding.cache.ttl must be positive"))
	}
	return errs
}
