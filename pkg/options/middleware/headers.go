package middleware

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
)

// Request id generators.
const (
	GeneratorULID = "ulid"
	GeneratorUUID = "uuid"
)

// RequestIDOptions controls how request ids are minted and propagated.
type RequestIDOptions struct {
	Header string `json:"header" mapstructure:"header"`

	// Generator is "ulid" or "uuid".
	Generator string `json:"generator" mapstructure:"generator"`

	// TrustIncoming reuses an id sent by the caller.
	TrustIncoming bool `json:"trust-incoming" mapstructure:"trust-incoming"`

	// MaxLength bounds a reused id. Longer ids are replaced.
	MaxLength int `json:"max-length" mapstructure:"max-length"`
}

func NewRequestIDOptions() *RequestIDOptions {
	return &RequestIDOptions{
		Header:        "X-Request-ID",
		Generator:     GeneratorULID,
		TrustIncoming: true,
		MaxLength:     64,
	}
}

func (o *RequestIDOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.request-id."
	fs.StringVar(&o.Header, p+"header", o.Header, "Header carrying the request id.")
	fs.StringVar(&o.Generator, p+"generator", o.Generator, "Request id generator: ulid or uuid.")
	fs.BoolVar(&o.TrustIncoming, p+"trust-incoming", o.TrustIncoming, "Reuse the request id sent by the caller.")
	fs.IntVar(&o.MaxLength, p+"max-length", o.MaxLength, "Longest caller request id that is reused.")
}

func (o *RequestIDOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if strings.TrimSpace(o.Header) == "" {
		errs = append(errs, fmt.Errorf("middleware.request-id.header must not be empty"))
	}
	if o.Generator != GeneratorULID && o.Generator != GeneratorUUID {
		errs = append(errs, fmt.Errorf("middleware.request-id.generator must be %s or %s, got %q", GeneratorULID, GeneratorUUID, o.Generator))
	}
	if o.MaxLength < 0 {
		errs = append(errs, fmt.Errorf("middleware.request-id.max-length must not be negative"))
	}
	return errs
}

// Reuse reports whether a caller supplied id can be kept.
func (o *RequestIDOptions) Reuse(incoming string) bool {
	if !o.TrustIncoming || incoming == "" {
		return false
	}
	return o.MaxLength == 0 || len(incoming) <= o.MaxLength
}

// CORSOptions configures cross origin access to the read-only API.
type CORSOptions struct {
	AllowOrigins     []string      `json:"allow-origins" mapstructure:"allow-origins"`
	AllowHeaders     []string      `json:"allow-headers" mapstructure:"allow-headers"`
	ExposeHeaders    []string      `json:"expose-headers" mapstructure:"expose-headers"`
	AllowCredentials bool          `json:"allow-credentials" mapstructure:"allow-credentials"`
	MaxAge           time.Duration `json:"max-age" mapstructure:"max-age"`
}

// CORSMethods are the only methods the API serves.
var CORSMethods = []string{"GET", "HEAD", "OPTIONS"}

func NewCORSOptions() *CORSOptions {
	return &CORSOptions{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID", "X-Client-ID", "traceparent"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        24 * time.Hour,
	}
}

func (o *CORSOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.cors."
	fs.StringSliceVar(&o.AllowOrigins, p+"allow-origins", o.AllowOrigins, "Origins allowed to call the API, or * for any.")
	fs.StringSliceVar(&o.AllowHeaders, p+"allow-headers", o.AllowHeaders, "Request headers allowed in cross origin calls.")
	fs.StringSliceVar(&o.ExposeHeaders, p+"expose-headers", o.ExposeHeaders, "Response headers visible to cross origin callers.")
	fs.BoolVar(&o.AllowCredentials, p+"allow-credentials", o.AllowCredentials, "Allow credentialed cross origin calls.")
	fs.DurationVar(&o.MaxAge, p+"max-age", o.MaxAge, "How long browsers may cache a preflight answer.")
}

func (o *CORSOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if len(o.AllowOrigins) == 0 {
		errs = append(errs, fmt.Errorf("middleware.cors.allow-origins must list at least one origin"))
	}
	if o.AllowCredentials && slices.Contains(o.AllowOrigins, "*") {
		errs = append(errs, fmt.Errorf("middleware.cors.allow-credentials cannot be used with the * origin"))
	}
	if o.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("middleware.cors.max-age must not be negative"))
	}
	return errs
}

// Origin returns the Access-Control-Allow-Origin value for origin, or "" when
// the origin is not allowed.
func (o *CORSOptions) Origin(origin string) string {
	for _, allowed := range o.AllowOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}
