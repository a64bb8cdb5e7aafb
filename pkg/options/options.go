// Package options holds the flag-backed configuration sections shared by the
// SBS binaries. Each section registers its flags under the same dotted path
// that viper uses for its config key, so "--server.http.addr" and
// server.http.addr in sbs.yaml set the same field.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Section is one block of configuration.
type Section interface {
	// AddFlags registers the section's flags, nested under prefixes.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)

	// Validate reports every problem, not only the first.
	Validate() []error
}

// Join returns the flag prefix for prefixes, with a trailing dot, or "".
func Join(prefixes ...string) string {
	var b strings.Builder
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('.')
	}
	return b.String()
}

// Collect runs Validate on every section and concatenates the results.
func Collect(sections ...Section) []error {
	var errs []error
	for _, s := range sections {
		errs = append(errs, s.Validate()...)
	}
	return errs
}
