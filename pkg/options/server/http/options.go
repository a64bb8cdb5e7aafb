// Package http holds the listener settings of the SBS API.
package http

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
)

var _ options.Section = (*Options)(nil)

// DefaultAddr is where the API listens and where the CLI looks for it.
const DefaultAddr = ":8088"

// Options configures the net/http listener behind gin.
type Options struct {
	Addr              string        `json:"addr" mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `json:"read-header-timeout" mapstructure:"read-header-timeout"`
	ReadTimeout       time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout      time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	IdleTimeout       time.Duration `json:"idle-timeout" mapstructure:"idle-timeout"`
	// MaxHeaderBytes of 0 keeps the net/http default.
	MaxHeaderBytes int `json:"max-header-bytes" mapstructure:"max-header-bytes"`
}

// NewOptions returns the listener defaults. Responses are whole volumes, so
// the write timeout is generous.
func NewOptions() *Options {
	return &Options{
		Addr:              DefaultAddr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "http."
	fs.StringVar(&o.Addr, p+"addr", o.Addr, "Address the SBS API listens on.")
	fs.DurationVar(&o.ReadHeaderTimeout, p+"read-header-timeout", o.ReadHeaderTimeout, "Time allowed to read request headers.")
	fs.DurationVar(&o.ReadTimeout, p+"read-timeout", o.ReadTimeout, "Time allowed to read a whole request.")
	fs.DurationVar(&o.WriteTimeout, p+"write-timeout", o.WriteTimeout, "Time allowed to write a response.")
	fs.DurationVar(&o.IdleTimeout, p+"idle-timeout", o.IdleTimeout, "How long keep-alive connections stay open.")
	fs.IntVar(&o.MaxHeaderBytes, p+"max-header-bytes", o.MaxHeaderBytes, "Request header size limit, 0 for the default.")
}

func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if _, _, err := net.SplitHostPort(o.Addr); err != nil {
		errs = append(errs, fmt.Errorf("http.addr %q: %w", o.Addr, err))
	}
	for name, d := range map[string]time.Duration{
		"read-header-timeout": o.ReadHeaderTimeout,
		"read-timeout":        o.ReadTimeout,
		"write-timeout":       o.WriteTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("http.%s must be positive, got %s", name, d))
		}
	}
	if o.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("http.idle-timeout cannot be negative"))
	}
	if o.MaxHeaderBytes < 0 {
		errs = append(errs, fmt.Errorf("http.max-header-bytes cannot be negative"))
	}
	return errs
}

// Complete fills a zero read header timeout from the read timeout.
func (o *Options) Complete() error {
	if o.ReadHeaderTimeout == 0 {
		o.ReadHeaderTimeout = o.ReadTimeout
	}
	return nil
}
