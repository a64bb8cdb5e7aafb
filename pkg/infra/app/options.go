package app

import "github.com/spf13/pflag"

// CliOptions is implemented by the root options struct of a binary.
type CliOptions interface {
	// AddFlags adds flags to the flagset.
	AddFlags(fs *pflag.FlagSet)
	// Complete fills derived fields and defaults after config is loaded.
	Complete() error
	// Validate validates the completed options.
	Validate() error
}
