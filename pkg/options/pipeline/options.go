// Package pipeline provides the request defaults of the embedding pipeline.
package pipeline

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-embed/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options holds the values applied when a request omits a field.
type Options struct {
	// ChunkSize is the default chunk size in words.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// Overlap is the default number of words shared by adjacent chunks.
	Overlap int `json:"overlap" mapstructure:"overlap"`

	// Chunk splits inputs into chunks by default.
	Chunk bool `json:"chunk" mapstructure:"chunk"`

	// SaveToStore persists embeddings by default.
	SaveToStore bool `json:"save-to-store" mapstructure:"save-to-store"`

	// OptimizeText normalizes inputs before chunking by default.
	OptimizeText bool `json:"optimize-text" mapstructure:"optimize-text"`

	// TopK is the default number of search results.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Language is the default language of word-level normalization steps.
	Language string `json:"language" mapstructure:"language"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize: 256,
		Overlap:   50,
		TopK:      3,
		Language:  "english",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "pipeline."
	fs.IntVar(&o.ChunkSize, p+"chunk-size", o.ChunkSize, "Default chunk size in words.")
	fs.IntVar(&o.Overlap, p+"overlap", o.Overlap, "Default overlap between adjacent chunks in words.")
	fs.BoolVar(&o.Chunk, p+"chunk", o.Chunk, "Chunk inputs unless the request says otherwise.")
	fs.BoolVar(&o.SaveToStore, p+"save-to-store", o.SaveToStore, "Save embeddings unless the request says otherwise.")
	fs.BoolVar(&o.OptimizeText, p+"optimize-text", o.OptimizeText, "Normalize inputs unless the request says otherwise.")
	fs.IntVar(&o.TopK, p+"top-k", o.TopK, "Default number of search results.")
	fs.StringVar(&o.Language, p+"language", o.Language, "Default language of word-level normalization.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.chunk-size must be positive, got %d", o.ChunkSize))
	}
	if o.Overlap < 0 || o.Overlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("pipeline.overlap must be in [0, chunk-size), got %d", o.Overlap))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.top-k must be positive, got %d", o.TopK))
	}
	return errs
}
