// Package middleware provides middleware configuration options.
package middleware

import (
	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
)

var _ options.Section = (*Options)(nil)

// Options holds the configuration of every HTTP middleware the API server installs.
// Middleware run in the order recovery, request-id, tracing, logger, cors.
type Options struct {
	Recovery  *RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	RequestID *RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
	CORS      *CORSOptions      `json:"cors" mapstructure:"cors"`

	// DisableCORS skips the CORS middleware entirely.
	DisableCORS bool `json:"disable-cors" mapstructure:"disable-cors"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates default middleware options.
func NewOptions() *Options {
	return &Options{
		Recovery:  NewRecoveryOptions(),
		RequestID: NewRequestIDOptions(),
		Logger:    NewLoggerOptions(),
		CORS:      NewCORSOptions(),
	}
}

// AddFlags adds flags for every middleware to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.DisableCORS, options.Join(prefixes...)+"middleware.disable-cors", o.DisableCORS, "Disable the CORS middleware.")
	o.Recovery.AddFlags(fs, prefixes...)
	o.RequestID.AddFlags(fs, prefixes...)
	o.Logger.AddFlags(fs, prefixes...)
	o.CORS.AddFlags(fs, prefixes...)
}

// Validate validates every middleware configuration.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	errs = append(errs, o.RequestID.Validate()...)
	errs = append(errs, o.Logger.Validate()...)
	if !o.DisableCORS {
		errs = append(errs, o.CORS.Validate()...)
	}
	return errs
}

// Complete fills nil sections with defaults.
func (o *Options) Complete() error {
	if o.Recovery == nil {
		o.Recovery = NewRecoveryOptions()
	}
	if o.RequestID == nil {
		o.RequestID = NewRequestIDOptions()
	}
	if o.Logger == nil {
		o.Logger = NewLoggerOptions()
	}
	if o.CORS == nil {
		o.CORS = NewCORSOptions()
	}
	return nil
}

// WithoutCORS disables the CORS middleware.
func WithoutCORS() Option {
	return func(o *Options) {
		o.DisableCORS = true
	}
}

// ApplyOptions applies the given options.
func (o *Options) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}
