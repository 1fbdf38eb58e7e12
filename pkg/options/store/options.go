// Package store provides vector store selection options.
package store

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-embed/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Supported backends.
const (
	BackendQdrant = "qdrant"
	BackendMilvus = "milvus"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and shapes the vector store.
type Options struct {
	// Enable turns persistence and search on. A disabled store answers
	// searches with an empty list and ignores writes.
	Enable bool `json:"enable" mapstructure:"enable"`

	// Backend is one of qdrant, milvus, sqlite or memory. The default build
	// carries qdrant; milvus needs a binary built with -tags milvus.
	Backend string `json:"backend" mapstructure:"backend"`

	// Collection is used when a request names none.
	Collection string `json:"collection" mapstructure:"collection"`

	// VectorSize is the dimension of lazily created collections.
	VectorSize int `json:"vector-size" mapstructure:"vector-size"`

	// Distance is the metric of lazily created collections: COSINE, EUCLID or DOT.
	Distance string `json:"distance" mapstructure:"distance"`

	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `json:"sqlite-path" mapstructure:"sqlite-path"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Enable:     false,
		Backend:    BackendQdrant,
		Collection: "embeddings",
		VectorSize: 384,
		Distance:   "COSINE",
		SQLitePath: "embeddings.db",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "store."
	fs.BoolVar(&o.Enable, p+"enable", o.Enable, "Enable the vector store.")
	fs.StringVar(&o.Backend, p+"backend", o.Backend, "Vector store backend: qdrant, milvus, sqlite or memory.")
	fs.StringVar(&o.Collection, p+"collection", o.Collection, "Default collection name.")
	fs.IntVar(&o.VectorSize, p+"vector-size", o.VectorSize, "Vector size of lazily created collections.")
	fs.StringVar(&o.Distance, p+"distance", o.Distance, "Distance metric of lazily created collections: COSINE, EUCLID or DOT.")
	fs.StringVar(&o.SQLitePath, p+"sqlite-path", o.SQLitePath, "Database file of the sqlite backend.")
}

// Complete normalizes case.
func (o *Options) Complete() error {
	o.Backend = strings.ToLower(strings.TrimSpace(o.Backend))
	o.Distance = strings.ToUpper(strings.TrimSpace(o.Distance))
	return nil
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch strings.ToLower(o.Backend) {
	case BackendQdrant, BackendMilvus, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not supported", o.Backend))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("store.collection cannot be empty"))
	}
	if o.VectorSize <= 0 {
		errs = append(errs, fmt.Errorf("store.vector-size must be positive, got %d", o.VectorSize))
	}
	switch strings.ToUpper(o.Distance) {
	case "COSINE", "EUCLID", "EUCLIDEAN", "L2", "DOT", "IP":
	default:
		errs = append(errs, fmt.Errorf("store.distance %q is not supported", o.Distance))
	}
	if strings.EqualFold(o.Backend, BackendSQLite) && o.SQLitePath == "" {
		errs = append(errs, fmt.Errorf("store.sqlite-path is required for the sqlite backend"))
	}
	return errs
}
