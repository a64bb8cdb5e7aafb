// Package redis holds the connection settings of the Redis search cache.
package redis

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
)

var _ options.Section = (*Options)(nil)

// Options configures a single-node Redis connection.
type Options struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	Password string `json:"-" mapstructure:"password"`
	Database int    `json:"database" mapstructure:"database"`

	PoolSize     int           `json:"pool-size" mapstructure:"pool-size"`
	DialTimeout  time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	ReadTimeout  time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// MaxRetries is per command; -1 disables retries.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
	// ConnectAttempts bounds the startup ping.
	ConnectAttempts uint `json:"connect-attempts" mapstructure:"connect-attempts"`
}

// NewOptions returns settings for a local Redis. Cache lookups sit on the
// request path, so command timeouts are short.
func NewOptions() *Options {
	return &Options{
		Host:            "127.0.0.1",
		Port:            6379,
		PoolSize:        10,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     500 * time.Millisecond,
		WriteTimeout:    500 * time.Millisecond,
		MaxRetries:      1,
		ConnectAttempts: 2,
	}
}

// Addr returns host:port.
func (o *Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func (o *Options) String() string {
	auth := "none"
	if o.Password != "" {
		auth = "password"
	}
	return fmt.Sprintf("redis://%s/%d (auth=%s)", o.Addr(), o.Database, auth)
}

// Complete reads the password from REDIS_PASSWORD when none is configured.
func (o *Options) Complete() error {
	if o.Password == "" {
		o.Password = os.Getenv("REDIS_PASSWORD")
	}
	return nil
}

func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("redis.host is required"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("redis.port %d is out of range", o.Port))
	}
	if o.Database < 0 || o.Database > 15 {
		errs = append(errs, fmt.Errorf("redis.database %d is out of range 0-15", o.Database))
	}
	if o.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("redis.pool-size cannot be negative"))
	}
	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "redis."
	fs.StringVar(&o.Host, p+"host", o.Host, "Redis host.")
	fs.IntVar(&o.Port, p+"port", o.Port, "Redis port.")
	fs.StringVar(&o.Password, p+"password", o.Password, "Redis password. Prefer the REDIS_PASSWORD environment variable.")
	fs.IntVar(&o.Database, p+"database", o.Database, "Redis logical database.")
	fs.IntVar(&o.PoolSize, p+"pool-size", o.PoolSize, "Connections kept in the pool.")
	fs.DurationVar(&o.DialTimeout, p+"dial-timeout", o.DialTimeout, "Timeout for opening a connection.")
	fs.DurationVar(&o.ReadTimeout, p+"read-timeout", o.ReadTimeout, "Timeout for reading a reply.")
	fs.DurationVar(&o.WriteTimeout, p+"write-timeout", o.WriteTimeout, "Timeout for writing a command.")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "Retries per command, -1 to disable.")
	fs.UintVar(&o.ConnectAttempts, p+"connect-attempts", o.ConnectAttempts, "Attempts for the startup ping.")
}
