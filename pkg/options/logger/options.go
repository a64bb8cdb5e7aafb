// Package logger configures the process wide kart-io logger.
package logger

import (
	"fmt"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/option"
	"github.com/spf13/pflag"

	"github.com/kart-io/sbs-x/pkg/options"
)

// Options embeds option.LogOption so config files map straight onto it.
type Options struct {
	*option.LogOption
}

// NewOptions returns JSON logging to stdout at INFO, the server default.
func NewOptions() *Options {
	return &Options{LogOption: option.DefaultLogOption()}
}

// NewConsoleOptions returns human readable WARN logging to stderr, leaving
// stdout to command output.
func NewConsoleOptions() *Options {
	o := NewOptions()
	o.Level = "WARN"
	o.Format = "console"
	o.OutputPaths = []string{"stderr"}
	return o
}

func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "log."
	fs.StringVar(&o.Engine, p+"engine", o.Engine, "Logging engine: zap or slog.")
	fs.StringVar(&o.Level, p+"level", o.Level, "Minimum level: DEBUG, INFO, WARN, ERROR or FATAL.")
	fs.StringVar(&o.Format, p+"format", o.Format, "Output format: json or console.")
	fs.StringSliceVar(&o.OutputPaths, p+"output-paths", o.OutputPaths, "Log destinations: stdout, stderr or file paths.")
	fs.BoolVar(&o.Development, p+"development", o.Development, "Development mode with callers and stack traces.")
	fs.BoolVar(&o.DisableCaller, p+"disable-caller", o.DisableCaller, "Omit the caller from log entries.")
	fs.BoolVar(&o.DisableStacktrace, p+"disable-stacktrace", o.DisableStacktrace, "Omit stack traces from error entries.")

	if o.Rotation == nil {
		o.Rotation = &option.RotationOption{}
	}
	fs.IntVar(&o.Rotation.MaxSize, p+"rotation.max-size", o.Rotation.MaxSize, "Megabytes a log file may reach before it is rotated.")
	fs.IntVar(&o.Rotation.MaxBackups, p+"rotation.max-backups", o.Rotation.MaxBackups, "Rotated log files to keep.")
	fs.BoolVar(&o.Rotation.Compress, p+"rotation.compress", o.Rotation.Compress, "Gzip rotated log files.")
}

func (o *Options) Validate() []error {
	if o == nil || o.LogOption == nil {
		return nil
	}
	var errs []error
	if err := o.LogOption.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.Format != "json" && o.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", o.Format))
	}
	if len(o.OutputPaths) == 0 {
		errs = append(errs, fmt.Errorf("log.output-paths must name at least one destination"))
	}
	return errs
}

func (o *Options) Complete() error {
	if o.LogOption == nil {
		o.LogOption = option.DefaultLogOption()
	}
	return nil
}

// Init builds the logger, stamping every entry with the service name and
// version, and installs it as the global logger.
func (o *Options) Init(service, version string) error {
	o.AddInitialField("service.name", service)
	o.AddInitialField("service.version", version)

	log, err := logger.New(o.LogOption)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)
	return nil
}
