// Package server provides server manager configuration options.
package server

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
	mwopts "github.com/kart-io/sbs-x/pkg/options/middleware"
	httpopts "github.com/kart-io/sbs-x/pkg/options/server/http"
)

var _ options.Section = (*Options)(nil)

// Gin run modes.
const (
	ModeRelease = "release"
	ModeDebug   = "debug"
	ModeTest    = "test"
)

// Options contains all configuration for the server manager.
type Options struct {
	// Mode is the gin run mode.
	Mode string `json:"mode" mapstructure:"mode"`

	HTTP       *httpopts.Options `json:"http" mapstructure:"http"`
	Middleware *mwopts.Options   `json:"middleware" mapstructure:"middleware"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Mode:            ModeRelease,
		HTTP:            httpopts.NewOptions(),
		Middleware:      mwopts.NewOptions(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// AddFlags adds flags for server options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Mode, p+"server.mode", o.Mode, "Gin run mode: release, debug or test.")
	fs.DurationVar(&o.ShutdownTimeout, p+"server.shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")

	// Nested under "server." so flag names match the config keys.
	nested := append(append([]string{}, prefixes...), "server")
	o.HTTP.AddFlags(fs, nested...)
	o.Middleware.AddFlags(fs, nested...)
}

// Validate validates all server options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Mode {
	case ModeRelease, ModeDebug, ModeTest:
	default:
		errs = append(errs, fmt.Errorf("server.mode %q is not one of release, debug, test", o.Mode))
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown-timeout must be positive"))
	}
	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Middleware.Validate()...)
	return errs
}

// Complete completes all server options with defaults.
func (o *Options) Complete() error {
	if o.Mode == "" {
		o.Mode = ModeRelease
	}
	if o.HTTP == nil {
		o.HTTP = httpopts.NewOptions()
	}
	if o.Middleware == nil {
		o.Middleware = mwopts.NewOptions()
	}
	if err := o.HTTP.Complete(); err != nil {
		return err
	}
	return o.Middleware.Complete()
}

// ApplyOptions applies the given options.
func (o *Options) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithMode sets the gin run mode.
func WithMode(mode string) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithHTTPOptions replaces the HTTP listener options.
func WithHTTPOptions(h *httpopts.Options) Option {
	return func(o *Options) {
		o.HTTP = h
	}
}

// WithMiddleware replaces the middleware options.
func WithMiddleware(m *mwopts.Options) Option {
	return func(o *Options) {
		o.Middleware = m
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}
