package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kart-io/sbs-x/pkg/utils/json"
)

// configDirs are searched, in order, when --config is not given.
func (a *App) configDirs() []string {
	return []string{
		".",
		"./configs",
		filepath.Join(os.Getenv("HOME"), "."+a.name),
		"/etc/" + a.name,
	}
}

// loadConfig merges the config file, the environment and the flags into the options.
func (a *App) loadConfig(cmd *cobra.Command) error {
	v := a.viper

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(a.name)
		v.SetConfigType("yaml")
		for _, dir := range a.configDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	expandEnv(v)

	v.SetEnvPrefix(a.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if a.options == nil {
		return nil
	}
	// Bound flags register every key, so the environment reaches keys the file omits.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

var envRef = regexp.MustCompile(`\$(?:\{([^}]+)\}|([A-Za-z_][A-Za-z0-9_]*))`)

// expandEnv substitutes ${VAR} and $VAR in string values. Unset variables stay as written.
func expandEnv(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		raw, ok := v.Get(key).(string)
		if !ok || !strings.Contains(raw, "$") {
			continue
		}
		out := envRef.ReplaceAllStringFunc(raw, func(ref string) string {
			m := envRef.FindStringSubmatch(ref)
			name := m[1] + m[2]
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			return ref
		})
		if out != raw {
			v.Set(key, out)
		}
	}
}

// printConfig writes the resolved options as indented JSON.
func printConfig(w io.Writer, opts CliOptions) error {
	if opts == nil {
		_, err := io.WriteString(w, "{}\n")
		return err
	}
	return json.Encode(w, opts)
}
