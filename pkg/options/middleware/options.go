// Package middleware provides HTTP middleware configuration options.
package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sentinel-embed/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Request ID generator types.
const (
	GeneratorRandom = "random"
	GeneratorHex    = "hex"
	GeneratorULID   = "ulid"
)

// RecoveryOptions defines recovery middleware options.
type RecoveryOptions struct {
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

// RequestIDOptions defines request ID middleware options.
type RequestIDOptions struct {
	Header string `json:"header" mapstructure:"header"`
	// GeneratorType is random/hex (32 hex chars) or ulid (26 chars, time sortable).
	GeneratorType string `json:"generator" mapstructure:"generator"`
}

// LoggerOptions defines access log middleware options.
type LoggerOptions struct {
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// TimeoutOptions defines timeout middleware options. A zero timeout disables it.
type TimeoutOptions struct {
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
	SkipPaths []string      `json:"skip-paths" mapstructure:"skip-paths"`
}

// AuthOptions defines bearer token authentication options.
type AuthOptions struct {
	// Token is the static bearer token. An empty token disables authentication.
	Token string `json:"-" mapstructure:"token"`
	// SkipPaths are served without authentication.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// CORSOptions defines CORS middleware options. CORS headers are only
// written when Enable is set.
type CORSOptions struct {
	Enable           bool     `json:"enable" mapstructure:"enable"`
	AllowOrigins     []string `json:"allow-origins" mapstructure:"allow-origins"`
	AllowMethods     []string `json:"allow-methods" mapstructure:"allow-methods"`
	AllowHeaders     []string `json:"allow-headers" mapstructure:"allow-headers"`
	ExposeHeaders    []string `json:"expose-headers" mapstructure:"expose-headers"`
	AllowCredentials bool     `json:"allow-credentials" mapstructure:"allow-credentials"`
	MaxAge           int      `json:"max-age" mapstructure:"max-age"`
}

// HealthOptions defines the probe routes. An empty path disables the probe.
type HealthOptions struct {
	LivenessPath  string `json:"liveness-path" mapstructure:"liveness-path"`
	ReadinessPath string `json:"readiness-path" mapstructure:"readiness-path"`
}

// Options groups the options of every middleware in the chain.
type Options struct {
	Recovery  *RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	RequestID *RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
	Timeout   *TimeoutOptions   `json:"timeout" mapstructure:"timeout"`
	Auth      *AuthOptions      `json:"auth" mapstructure:"auth"`
	CORS      *CORSOptions      `json:"cors" mapstructure:"cors"`
	Health    *HealthOptions    `json:"health" mapstructure:"health"`
}

// NewOptions creates default middleware options.
func NewOptions() *Options {
	return &Options{
		Recovery: &RecoveryOptions{},
		RequestID: &RequestIDOptions{
			Header:        "X-Request-ID",
			GeneratorType: GeneratorRandom,
		},
		Logger: &LoggerOptions{
			SkipPaths: []string{"/healthz", "/livez", "/readyz", "/metrics"},
		},
		Timeout: &TimeoutOptions{},
		Auth: &AuthOptions{
			SkipPaths: []string{"/healthz"},
		},
		CORS: &CORSOptions{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
			MaxAge:       86400,
		},
		Health: &HealthOptions{
			LivenessPath:  "/livez",
			ReadinessPath: "/readyz",
		},
	}
}

// AddFlags adds flags for middleware options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware."
	fs.BoolVar(&o.Recovery.EnableStackTrace, p+"recovery.enable-stack-trace", o.Recovery.EnableStackTrace, "Include the stack trace in panic responses outside production.")
	fs.StringVar(&o.RequestID.Header, p+"request-id.header", o.RequestID.Header, "Request ID header name.")
	fs.StringVar(&o.RequestID.GeneratorType, p+"request-id.generator", o.RequestID.GeneratorType, "ID generator type: random/hex (32 chars) or ulid (26 chars, sortable).")
	fs.StringSliceVar(&o.Logger.SkipPaths, p+"logger.skip-paths", o.Logger.SkipPaths, "Paths to skip access logging.")
	fs.DurationVar(&o.Timeout.Timeout, p+"timeout.timeout", o.Timeout.Timeout, "Request processing timeout, 0 disables it.")
	fs.StringSliceVar(&o.Timeout.SkipPaths, p+"timeout.skip-paths", o.Timeout.SkipPaths, "Paths without a processing timeout.")
	fs.StringVar(&o.Auth.Token, p+"auth.token", o.Auth.Token, "Static bearer token required by the API. Empty disables authentication.")
	fs.StringSliceVar(&o.Auth.SkipPaths, p+"auth.skip-paths", o.Auth.SkipPaths, "Paths served without authentication.")
	fs.BoolVar(&o.CORS.Enable, p+"cors.enable", o.CORS.Enable, "Write CORS headers for allowed origins.")
	fs.StringSliceVar(&o.CORS.AllowOrigins, p+"cors.allow-origins", o.CORS.AllowOrigins, "CORS allowed origins.")
	fs.StringSliceVar(&o.CORS.AllowMethods, p+"cors.allow-methods", o.CORS.AllowMethods, "CORS allowed methods.")
	fs.StringSliceVar(&o.CORS.AllowHeaders, p+"cors.allow-headers", o.CORS.AllowHeaders, "CORS allowed headers.")
	fs.StringSliceVar(&o.CORS.ExposeHeaders, p+"cors.expose-headers", o.CORS.ExposeHeaders, "CORS exposed headers.")
	fs.BoolVar(&o.CORS.AllowCredentials, p+"cors.allow-credentials", o.CORS.AllowCredentials, "CORS allow credentials.")
	fs.IntVar(&o.CORS.MaxAge, p+"cors.max-age", o.CORS.MaxAge, "CORS preflight max age in seconds.")
	fs.StringVar(&o.Health.LivenessPath, p+"health.liveness-path", o.Health.LivenessPath, "Liveness probe path, empty disables it.")
	fs.StringVar(&o.Health.ReadinessPath, p+"health.readiness-path", o.Health.ReadinessPath, "Readiness probe path, empty disables it.")
}

// Validate validates the middleware options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.RequestID != nil {
		if o.RequestID.Header == "" {
			errs = append(errs, errors.New("request ID header name is required"))
		}
		switch o.RequestID.GeneratorType {
		case GeneratorRandom, GeneratorHex, GeneratorULID, "":
		default:
			errs = append(errs, errors.New("invalid generator type: must be 'random', 'hex', or 'ulid'"))
		}
	}
	if o.Timeout != nil && o.Timeout.Timeout < 0 {
		errs = append(errs, errors.New("middleware timeout cannot be negative"))
	}
	if o.CORS != nil && o.CORS.Enable {
		errs = append(errs, o.CORS.Validate()...)
	}
	return errs
}

// Validate validates the CORS options.
func (o *CORSOptions) Validate() []error {
	if len(o.AllowOrigins) == 0 {
		return []error{errors.New("CORS: allow-origins cannot be empty")}
	}
	var errs []error
	for _, origin := range o.AllowOrigins {
		if origin == "*" {
			if o.AllowCredentials {
				errs = append(errs, errors.New("CORS: wildcard origin cannot be combined with allow-credentials"))
			}
			continue
		}
		scheme, rest, ok := strings.Cut(origin, "://")
		if !ok || scheme == "" || rest == "" || strings.ContainsAny(rest, "/?#") {
			errs = append(errs, fmt.Errorf("CORS: invalid origin %q, want scheme://host[:port]", origin))
		}
	}
	if o.MaxAge < 0 {
		errs = append(errs, errors.New("CORS: max-age cannot be negative"))
	}
	return errs
}

// Complete fills nil sections with defaults.
func (o *Options) Complete() error {
	d := NewOptions()
	if o.Recovery == nil {
		o.Recovery = d.Recovery
	}
	if o.RequestID == nil {
		o.RequestID = d.RequestID
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.Timeout == nil {
		o.Timeout = d.Timeout
	}
	if o.Auth == nil {
		o.Auth = d.Auth
	}
	if o.CORS == nil {
		o.CORS = d.CORS
	}
	if o.Health == nil {
		o.Health = d.Health
	}
	return nil
}
