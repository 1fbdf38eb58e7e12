// Package qdrantopts provides options for the Qdrant gRPC client.
package qdrantopts

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-embed/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

const (
	// GRPCPort is the default Qdrant gRPC port.
	GRPCPort = 6334
	// RESTPort is the Qdrant REST port. Legacy deployments configure it.
	RESTPort = 6333
)

// Options contains Qdrant client configuration.
type Options struct {
	// Host is the Qdrant server host name.
	Host string `json:"host" mapstructure:"host"`

	// Port is the Qdrant gRPC port.
	Port int `json:"port" mapstructure:"port"`

	// APIKey authenticates against Qdrant Cloud or a secured instance.
	APIKey string `json:"-" mapstructure:"api-key"`

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool `json:"use-tls" mapstructure:"use-tls"`

	// Timeout bounds every call made to Qdrant.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Host:    "localhost",
		Port:    GRPCPort,
		Timeout: 10 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "qdrant."
	fs.StringVar(&o.Host, p+"host", o.Host, "Qdrant server host.")
	fs.IntVar(&o.Port, p+"port", o.Port, "Qdrant gRPC port. The REST port 6333 is mapped to 6334.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Qdrant API key.")
	fs.BoolVar(&o.UseTLS, p+"use-tls", o.UseTLS, "Use TLS for the Qdrant connection.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Timeout of a single Qdrant call.")
}

// Complete maps the REST port to the gRPC port the client speaks.
func (o *Options) Complete() error {
	if o.Port == RESTPort {
		o.Port = GRPCPort
	}
	if o.Port == 0 {
		o.Port = GRPCPort
	}
	return nil
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("qdrant host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("qdrant port must be in 1..65535, got %d", o.Port))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("qdrant timeout must be positive"))
	}
	return errs
}

// Addr returns host:port.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}
