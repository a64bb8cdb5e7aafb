// Package cache configures the Redis search result cache of the API server.
package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
	redisopts "github.com/kart-io/sbs-x/pkg/options/redis"
)

var _ options.Section = (*Options)(nil)

// Options configures the search cache. It is off by default; the dataset is
// small enough that most deployments do not need it.
type Options struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL applies to searches with matches.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`
	// EmptyTTL applies to searches without matches. Zero means TTL.
	EmptyTTL  time.Duration `json:"empty-ttl" mapstructure:"empty-ttl"`
	KeyPrefix string        `json:"key-prefix" mapstructure:"key-prefix"`

	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`
}

func NewOptions() *Options {
	return &Options{
		TTL:       10 * time.Minute,
		EmptyTTL:  time.Minute,
		KeyPrefix: "sbs:search:",
		Redis:     redisopts.NewOptions(),
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "cache."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Cache search results in Redis.")
	fs.DurationVar(&o.TTL, p+"ttl", o.TTL, "Lifetime of cached searches with matches.")
	fs.DurationVar(&o.EmptyTTL, p+"empty-ttl", o.EmptyTTL, "Lifetime of cached searches without matches, 0 for --cache.ttl.")
	fs.StringVar(&o.KeyPrefix, p+"key-prefix", o.KeyPrefix, "Prefix of every cache key.")

	if o.Redis == nil {
		o.Redis = redisopts.NewOptions()
	}
	o.Redis.AddFlags(fs, append(append([]string{}, prefixes...), "cache")...)
}

// Validate only checks an enabled cache.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
	}
	if o.EmptyTTL < 0 {
		errs = append(errs, fmt.Errorf("cache.empty-ttl cannot be negative"))
	}
	if !strings.HasSuffix(o.KeyPrefix, ":") {
		errs = append(errs, fmt.Errorf("cache.key-prefix %q must end with ':'", o.KeyPrefix))
	}
	return append(errs, o.Redis.Validate()...)
}

func (o *Options) Complete() error {
	if o.Redis == nil {
		o.Redis = redisopts.NewOptions()
	}
	if o.EmptyTTL == 0 {
		o.EmptyTTL = o.TTL
	}
	return o.Redis.Complete()
}
