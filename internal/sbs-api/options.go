// Package app provides the SBS API server application.
package app

import (
	"fmt"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/sbs-x/internal/sbs-api/store"
	cacheopts "github.com/kart-io/sbs-x/pkg/options/cache"
	logopts "github.com/kart-io/sbs-x/pkg/options/logger"
	mongodbopts "github.com/kart-io/sbs-x/pkg/options/mongodb"
	serveropts "github.com/kart-io/sbs-x/pkg/options/server"
	tracingopts "github.com/kart-io/sbs-x/pkg/options/tracing"
)

// Options contains all SBS API options.
type Options struct {
	// Server contains server configuration.
	Server *serveropts.Options `json:"server" mapstructure:"server"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Store selects the document store backend.
	Store *StoreOptions `json:"store" mapstructure:"store"`

	// MongoDB is used when Store.Backend is "mongo".
	MongoDB *mongodbopts.Options `json:"mongodb" mapstructure:"mongodb"`

	// Cache configures the Redis search cache.
	Cache *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// Tracing configures OpenTelemetry.
	Tracing *tracingopts.Options `json:"tracing" mapstructure:"tracing"`
}

// StoreOptions selects the document store backend.
type StoreOptions struct {
	// Backend is "mongo" or "memory".
	Backend string `json:"backend" mapstructure:"backend"`

	// DataFile is the JSON dataset loaded by the memory backend.
	DataFile string `json:"data-file" mapstructure:"data-file"`

	// Watch reloads DataFile when it changes.
	Watch bool `json:"watch" mapstructure:"watch"`
}

// NewStoreOptions creates default store options.
func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Backend: store.BackendMongo,
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Server:  serveropts.NewOptions(),
		Log:     logopts.NewOptions(),
		Store:   NewStoreOptions(),
		MongoDB: mongodbopts.NewOptions(),
		Cache:   cacheopts.NewOptions(),
		Tracing: tracingopts.NewOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Server.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.MongoDB.AddFlags(fs)
	o.Cache.AddFlags(fs)
	o.Tracing.AddFlags(fs)

	fs.StringVar(&o.Store.Backend, "store.backend", o.Store.Backend, "Document store backend: mongo or memory.")
	fs.StringVar(&o.Store.DataFile, "store.data-file", o.Store.DataFile, "JSON dataset file for the memory backend.")
	fs.BoolVar(&o.Store.Watch, "store.watch", o.Store.Watch, "Reload the dataset file when it changes.")
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.Server.Complete(); err != nil {
		return err
	}
	if err := o.Log.Complete(); err != nil {
		return err
	}
	if o.Store.Backend == store.BackendMongo {
		if err := o.MongoDB.Complete(); err != nil {
			return err
		}
	}
	if err := o.Cache.Complete(); err != nil {
		return err
	}
	return o.Tracing.Complete()
}

// Validate validates the options.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Server.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Store.Validate()...)
	if o.Store.Backend == store.BackendMongo {
		errs = append(errs, o.MongoDB.Validate()...)
	}
	errs = append(errs, o.Cache.Validate()...)
	errs = append(errs, o.Tracing.Validate()...)
	return utilerrors.NewAggregate(errs)
}

// Validate checks the backend selection.
func (o *StoreOptions) Validate() []error {
	var errs []error
	switch o.Backend {
	case store.BackendMongo:
	case store.BackendMemory:
		if o.DataFile == "" {
			errs = append(errs, fmt.Errorf("store.data-file is required for the memory backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be mongo or memory, got %q", o.Backend))
	}
	if o.Watch && o.Backend != store.BackendMemory {
		errs = append(errs, fmt.Errorf("store.watch only applies to the memory backend"))
	}
	return errs
}

// StoreConfig returns the store factory configuration.
func (o *Options) StoreConfig() *store.Config {
	return &store.Config{
		Backend:  o.Store.Backend,
		DataFile: o.Store.DataFile,
		Mongo:    o.MongoDB,
	}
}
