// Package milvusopts provides options for Milvus client configuration.
package milvusopts

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-embed/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Supported vector index types.
const (
	IndexAuto    = "AUTOINDEX"
	IndexIVFFlat = "IVF_FLAT"
	IndexHNSW    = "HNSW"
)

// Options contains Milvus client configuration.
type Options struct {
	// Address is the Milvus server address (host:port).
	Address string `json:"address" mapstructure:"address"`

	// Database is the database name to use.
	Database string `json:"database" mapstructure:"database"`

	// Username for authentication.
	Username string `json:"username" mapstructure:"username"`

	// Password for authentication.
	Password string `json:"-" mapstructure:"password"`

	// Timeout for connection and operations.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// IndexType is the index built on the vector field of new collections.
	IndexType string `json:"index-type" mapstructure:"index-type"`

	// NProbe is the number of clusters queried by IVF searches.
	NProbe int `json:"nprobe" mapstructure:"nprobe"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Address:   "localhost:19530",
		Database:  "default",
		Timeout:   30 * time.Second,
		IndexType: IndexAuto,
		NProbe:    16,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "milvus."
	fs.StringVar(&o.Address, p+"address", o.Address, "Milvus server address (host:port).")
	fs.StringVar(&o.Database, p+"database", o.Database, "Milvus database name.")
	fs.StringVar(&o.Username, p+"username", o.Username, "Milvus username for authentication.")
	fs.StringVar(&o.Password, p+"password", o.Password, "Milvus password for authentication.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Connection and operation timeout.")
	fs.StringVar(&o.IndexType, p+"index-type", o.IndexType, "Vector index type of new collections: AUTOINDEX, IVF_FLAT or HNSW.")
	fs.IntVar(&o.NProbe, p+"nprobe", o.NProbe, "Number of clusters queried by IVF_FLAT searches.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, fmt.Errorf("milvus address is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("milvus timeout must be positive"))
	}
	switch strings.ToUpper(o.IndexType) {
	case IndexAuto, IndexIVFFlat, IndexHNSW:
	default:
		errs = append(errs, fmt.Errorf("milvus index-type %q is not supported", o.IndexType))
	}
	if o.NProbe <= 0 {
		errs = append(errs, fmt.Errorf("milvus nprobe must be positive"))
	}
	return errs
}
