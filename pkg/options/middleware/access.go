package middleware

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
)

// LoggerOptions configures the access log.
type LoggerOptions struct {
	// SkipPaths are never logged. Health checks hit /healthz every few seconds.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
	// SlowThreshold raises requests slower than this to warn level. Zero disables it.
	SlowThreshold time.Duration `json:"slow-threshold" mapstructure:"slow-threshold"`
	// ClientIDHeader names the header the explorer uses to identify itself.
	ClientIDHeader string `json:"client-id-header" mapstructure:"client-id-header"`
}

func NewLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		SkipPaths:      []string{"/healthz"},
		SlowThreshold:  time.Second,
		ClientIDHeader: "X-Client-ID",
	}
}

func (o *LoggerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.logger."
	fs.StringSliceVar(&o.SkipPaths, p+"skip-paths", o.SkipPaths, "Request paths left out of the access log.")
	fs.DurationVar(&o.SlowThreshold, p+"slow-threshold", o.SlowThreshold, "Log requests slower than this at warn level, 0 to disable.")
	fs.StringVar(&o.ClientIDHeader, p+"client-id-header", o.ClientIDHeader, "Header carrying the caller's client id.")
}

func (o *LoggerOptions) Validate() []error {
	if o != nil && o.SlowThreshold < 0 {
		return []error{errors.New("middleware.logger.slow-threshold cannot be negative")}
	}
	return nil
}

// RecoveryOptions configures panic recovery.
type RecoveryOptions struct {
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

func NewRecoveryOptions() *RecoveryOptions {
	return &RecoveryOptions{EnableStackTrace: true}
}

func (o *RecoveryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.EnableStackTrace, options.Join(prefixes...)+"middleware.recovery.enable-stack-trace", o.EnableStackTrace,
		"Log the goroutine stack of a recovered panic.")
}
