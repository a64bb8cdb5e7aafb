// Package mongodb provides MongoDB options.
package mongodb

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kart-io/sbs-x/pkg/options"
	"github.com/kart-io/sbs-x/pkg/utils/json"
)

var _ options.Section = (*Options)(nil)

const redactedPassword = "[REDACTED]"

// Options defines configuration options for MongoDB.
type Options struct {
	URI      string `json:"uri" mapstructure:"uri"`
	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"-" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`

	MaxPoolSize     uint64        `json:"max-pool-size" mapstructure:"max-pool-size"`
	MinPoolSize     uint64        `json:"min-pool-size" mapstructure:"min-pool-size"`
	MaxConnIdleTime time.Duration `json:"max-conn-idle-time" mapstructure:"max-conn-idle-time"`

	ConnectTimeout         time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	SocketTimeout          time.Duration `json:"socket-timeout" mapstructure:"socket-timeout"`
	ServerSelectionTimeout time.Duration `json:"server-selection-timeout" mapstructure:"server-selection-timeout"`

	// ConnectAttempts bounds how many times the initial connect+ping is tried.
	ConnectAttempts uint `json:"connect-attempts" mapstructure:"connect-attempts"`

	ReplicaSet string `json:"replica-set" mapstructure:"replica-set"`
	AuthSource string `json:"auth-source" mapstructure:"auth-source"`
	Direct     bool   `json:"direct" mapstructure:"direct"`

	// ReadPreference is a mongo read preference mode such as secondaryPreferred.
	ReadPreference string `json:"read-preference" mapstructure:"read-preference"`
}

type optionsForJSON struct {
	URI             string        `json:"uri"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	MaxPoolSize     uint64        `json:"max-pool-size"`
	MinPoolSize     uint64        `json:"min-pool-size"`
	ConnectTimeout  time.Duration `json:"connect-timeout"`
	ConnectAttempts uint          `json:"connect-attempts"`
	ReplicaSet      string        `json:"replica-set"`
	AuthSource      string        `json:"auth-source"`
	Direct          bool          `json:"direct"`
	ReadPreference  string        `json:"read-preference"`
}

// MarshalJSON implements json.Marshaler with password redaction.
func (o *Options) MarshalJSON() ([]byte, error) {
	return json.Marshal(optionsForJSON{
		URI:             redactURI(o.URI),
		Host:            o.Host,
		Port:            o.Port,
		Username:        o.Username,
		Password:        redact(o.Password),
		Database:        o.Database,
		MaxPoolSize:     o.MaxPoolSize,
		MinPoolSize:     o.MinPoolSize,
		ConnectTimeout:  o.ConnectTimeout,
		ConnectAttempts: o.ConnectAttempts,
		ReplicaSet:      o.ReplicaSet,
		AuthSource:      o.AuthSource,
		Direct:          o.Direct,
		ReadPreference:  o.ReadPreference,
	})
}

// String returns a string representation with password redacted.
func (o *Options) String() string {
	return fmt.Sprintf("MongoDB{host=%s, port=%d, user=%s, password=%s, database=%s}",
		o.Host, o.Port, o.Username, redact(o.Password), o.Database)
}

func redact(password string) string {
	if password == "" {
		return ""
	}
	return redactedPassword
}

func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), redactedPassword)
	}
	return u.String()
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Host:                   "127.0.0.1",
		Port:                   27017,
		Database:               "sbs",
		MaxPoolSize:            100,
		MinPoolSize:            10,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		SocketTimeout:          30 * time.Second,
		ServerSelectionTimeout: 30 * time.Second,
		ConnectAttempts:        3,
		AuthSource:             "admin",
		ReadPreference:         readpref.PrimaryPreferredMode.String(),
	}
}

// Complete reads the password from MONGODB_PASSWORD when not set.
func (o *Options) Complete() error {
	if o.Password == "" {
		o.Password = os.Getenv("MONGODB_PASSWORD")
	}
	if o.ConnectAttempts == 0 {
		o.ConnectAttempts = 1
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.URI == "" && o.Host == "" {
		errs = append(errs, fmt.Errorf("mongodb.host or mongodb.uri is required"))
	}
	if o.Database == "" {
		errs = append(errs, fmt.Errorf("mongodb.database is required"))
	}
	if o.MinPoolSize > o.MaxPoolSize && o.MaxPoolSize != 0 {
		errs = append(errs, fmt.Errorf("mongodb.min-pool-size (%d) exceeds mongodb.max-pool-size (%d)", o.MinPoolSize, o.MaxPoolSize))
	}
	if o.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("mongodb.connect-timeout must be positive"))
	}
	if o.ReadPreference != "" {
		if _, err := readpref.ModeFromString(o.ReadPreference); err != nil {
			errs = append(errs, fmt.Errorf("mongodb.read-preference: %w", err))
		}
	}
	return errs
}

// AddFlags adds flags for MongoDB options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.URI, p+"mongodb.uri", o.URI, "MongoDB URI (mongodb://...).")
	fs.StringVar(&o.Host, p+"mongodb.host", o.Host, "MongoDB service host address.")
	fs.IntVar(&o.Port, p+"mongodb.port", o.Port, "MongoDB service port.")
	fs.StringVar(&o.Username, p+"mongodb.username", o.Username, "Username for access to mongodb service.")
	fs.StringVar(&o.Password, p+"mongodb.password", o.Password, "Password for access to mongodb (prefer the MONGODB_PASSWORD env var).")
	fs.StringVar(&o.Database, p+"mongodb.database", o.Database, "Database holding the sbs and sbstags collections.")
	fs.Uint64Var(&o.MaxPoolSize, p+"mongodb.max-pool-size", o.MaxPoolSize, "Maximum number of connections in the pool.")
	fs.Uint64Var(&o.MinPoolSize, p+"mongodb.min-pool-size", o.MinPoolSize, "Minimum number of connections in the pool.")
	fs.DurationVar(&o.MaxConnIdleTime, p+"mongodb.max-conn-idle-time", o.MaxConnIdleTime, "Maximum connection idle time.")
	fs.DurationVar(&o.ConnectTimeout, p+"mongodb.connect-timeout", o.ConnectTimeout, "Timeout for connection.")
	fs.DurationVar(&o.SocketTimeout, p+"mongodb.socket-timeout", o.SocketTimeout, "Timeout for socket operations.")
	fs.DurationVar(&o.ServerSelectionTimeout, p+"mongodb.server-selection-timeout", o.ServerSelectionTimeout, "Timeout for server selection.")
	fs.UintVar(&o.ConnectAttempts, p+"mongodb.connect-attempts", o.ConnectAttempts, "Attempts for the initial connect and ping.")
	fs.StringVar(&o.ReplicaSet, p+"mongodb.replica-set", o.ReplicaSet, "MongoDB replica set name.")
	fs.StringVar(&o.AuthSource, p+"mongodb.auth-source", o.AuthSource, "MongoDB authentication source.")
	fs.BoolVar(&o.Direct, p+"mongodb.direct", o.Direct, "MongoDB direct connection.")
	fs.StringVar(&o.ReadPreference, p+"mongodb.read-preference", o.ReadPreference, "Read preference mode, e.g. primary or secondaryPreferred.")
}

// Addr names the server for logs, without credentials.
func (o *Options) Addr() string {
	if o.URI != "" {
		return redactURI(o.URI)
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// BuildURI builds a MongoDB URI from options.
// If URI is already set in options, it returns that.
func BuildURI(opts *Options) string {
	if opts.URI != "" {
		return opts.URI
	}

	var uri strings.Builder
	uri.WriteString("mongodb://")

	if opts.Username != "" {
		uri.WriteString(url.QueryEscape(opts.Username))
		if opts.Password != "" {
			uri.WriteString(":")
			uri.WriteString(url.QueryEscape(opts.Password))
		}
		uri.WriteString("@")
	}

	uri.WriteString(opts.Host)
	if opts.Port != 0 {
		uri.WriteString(fmt.Sprintf(":%d", opts.Port))
	}
	uri.WriteString("/")
	uri.WriteString(opts.Database)

	params := url.Values{}
	if opts.AuthSource != "" && opts.AuthSource != "admin" {
		params.Add("authSource", opts.AuthSource)
	}
	if opts.ReplicaSet != "" {
		params.Add("replicaSet", opts.ReplicaSet)
	}
	if opts.Direct {
		params.Add("directConnection", "true")
	}
	if len(params) > 0 {
		uri.WriteString("?")
		uri.WriteString(params.Encode())
	}

	return uri.String()
}
