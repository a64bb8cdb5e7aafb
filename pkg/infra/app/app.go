// Package app bootstraps binaries with cobra commands, viper configuration
// and pflag flags.
//
// Configuration precedence, highest first: flags, environment, config file, defaults.
//
//	app.NewApp(
//	    app.WithName("sbs-api"),
//	    app.WithOptions(opts),
//	    app.WithRunFunc(run),
//	).Run()
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunFunc is the body of a single command binary.
type RunFunc func() error

// Option configures an App.
type Option func(*App)

// App is a cobra root command wired to a CliOptions value.
type App struct {
	name      string
	short     string
	long      string
	envPrefix string

	options  CliOptions
	run      RunFunc
	commands []*cobra.Command

	withVersion bool
	withConfig  bool

	cmd   *cobra.Command
	viper *viper.Viper
}

// WithName names the binary. The config file and env prefix derive from it.
func WithName(name string) Option { return func(a *App) { a.name = name } }

func WithShortDescription(desc string) Option { return func(a *App) { a.short = desc } }

func WithDescription(desc string) Option { return func(a *App) { a.long = desc } }

// WithEnvPrefix overrides the prefix derived from the name.
func WithEnvPrefix(prefix string) Option { return func(a *App) { a.envPrefix = prefix } }

func WithOptions(opts CliOptions) Option { return func(a *App) { a.options = opts } }

func WithRunFunc(run RunFunc) Option { return func(a *App) { a.run = run } }

// WithNoVersion drops the --version flag.
func WithNoVersion() Option { return func(a *App) { a.withVersion = false } }

// WithNoConfig skips config file and environment loading.
func WithNoConfig() Option { return func(a *App) { a.withConfig = false } }

// WithCommands turns the binary into a command group. Option flags become
// persistent and configuration loads before any subcommand runs.
func WithCommands(cmds ...*cobra.Command) Option {
	return func(a *App) { a.commands = append(a.commands, cmds...) }
}

func NewApp(opts ...Option) *App {
	a := &App{
		name:        filepath.Base(os.Args[0]),
		withVersion: true,
		withConfig:  true,
		viper:       viper.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.envPrefix == "" {
		a.envPrefix = strings.ToUpper(strings.ReplaceAll(a.name, "-", "_"))
	}
	a.cmd = a.newCommand()
	return a
}

func (a *App) newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          a.name,
		Short:        a.short,
		Long:         a.long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         a.runRoot,
	}

	pfs := cmd.PersistentFlags()
	if a.withConfig {
		pfs.StringP("config", "c", "", "Path to config file")
	}
	if a.withVersion {
		version.AddFlags(pfs)
	}

	if len(a.commands) == 0 {
		cmd.Flags().Bool("print-config", false, "Print the resolved configuration as JSON and exit")
		if a.options != nil {
			a.options.AddFlags(cmd.Flags())
		}
		return cmd
	}

	if a.options != nil {
		a.options.AddFlags(pfs)
	}
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error { return a.prepare(cmd) }
	cmd.AddCommand(a.commands...)
	return cmd
}

func (a *App) runRoot(cmd *cobra.Command, _ []string) error {
	if len(a.commands) > 0 {
		return cmd.Help()
	}
	if err := a.prepare(cmd); err != nil {
		return err
	}
	if show, _ := cmd.Flags().GetBool("print-config"); show {
		return printConfig(cmd.OutOrStdout(), a.options)
	}
	if a.run == nil {
		return cmd.Help()
	}
	return a.run()
}

// prepare loads configuration, then completes and validates the options.
func (a *App) prepare(cmd *cobra.Command) error {
	if a.withVersion {
		version.PrintAndExitIfRequested()
	}
	if a.withConfig {
		if err := a.loadConfig(cmd); err != nil {
			return err
		}
	}
	if a.options == nil {
		return nil
	}
	if err := a.options.Complete(); err != nil {
		return err
	}
	return a.options.Validate()
}

// Run executes the command and exits non-zero on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) Command() *cobra.Command { return a.cmd }
