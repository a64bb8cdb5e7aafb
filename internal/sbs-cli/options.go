// Package cli provides the sbs command line client.
package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/sbs-x/internal/explorer"
	"github.com/kart-io/sbs-x/pkg/options"
	logopts "github.com/kart-io/sbs-x/pkg/options/logger"
)

// Options contains all sbs client options.
type Options struct {
	// Client configures the API client and the session.
	Client *ClientOptions `json:"client" mapstructure:"client"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`
}

// ClientOptions configures how the client reaches the API.
type ClientOptions struct {
	BaseURL    string        `json:"base-url" mapstructure:"base-url"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
	Attempts   uint          `json:"attempts" mapstructure:"attempts"`
	RetryDelay time.Duration `json:"retry-delay" mapstructure:"retry-delay"`

	// Volume is shown while no search is active.
	Volume int `json:"volume" mapstructure:"volume"`

	// Debounce is the quiet period of the interactive shell.
	Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
}

// NewClientOptions creates default client options.
func NewClientOptions() *ClientOptions {
	return &ClientOptions{
		BaseURL:    explorer.DefaultBaseURL,
		Timeout:    15 * time.Second,
		Attempts:   3,
		RetryDelay: 200 * time.Millisecond,
		Volume:     explorer.DefaultVolume,
		Debounce:   explorer.DefaultDebounce,
	}
}

// AddFlags adds flags for client options to the specified FlagSet.
func (o *ClientOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.BaseURL, p+"client.base-url", o.BaseURL, "Base URL of the SBS API.")
	fs.DurationVar(&o.Timeout, p+"client.timeout", o.Timeout, "Timeout of a single API request.")
	fs.UintVar(&o.Attempts, p+"client.attempts", o.Attempts, "Attempts per request on transport errors and 5xx responses.")
	fs.DurationVar(&o.RetryDelay, p+"client.retry-delay", o.RetryDelay, "Base delay between attempts.")
	fs.IntVar(&o.Volume, p+"client.volume", o.Volume, "Volume shown while no search is active.")
	fs.DurationVar(&o.Debounce, p+"client.debounce", o.Debounce, "Quiet period before typed input is searched.")
}

// Validate validates the client options.
func (o *ClientOptions) Validate() []error {
	var errs []error
	u, err := url.Parse(o.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("client.base-url must be an absolute http(s) URL, got %q", o.BaseURL))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client.timeout must be positive"))
	}
	if o.Attempts == 0 {
		errs = append(errs, fmt.Errorf("client.attempts must be at least 1"))
	}
	if o.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("client.retry-delay must not be negative"))
	}
	if o.Volume <= 0 {
		errs = append(errs, fmt.Errorf("client.volume must be positive"))
	}
	return errs
}

// NewClient creates an API client from the options.
func (o *ClientOptions) NewClient() *explorer.Client {
	return explorer.NewClient(o.BaseURL,
		explorer.WithHTTPClient(newHTTPClient(o.Timeout)),
		explorer.WithRetry(o.Attempts, o.RetryDelay),
	)
}

// NewOptions creates new Options with defaults. The client logs warnings and
// errors to stderr unless configured otherwise.
func NewOptions() *Options {
	return &Options{
		Client: NewClientOptions(),
		Log:    logopts.NewConsoleOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Client.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Complete completes the options.
func (o *Options) Complete() error {
	return o.Log.Complete()
}

// Validate validates the options.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Client.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}
