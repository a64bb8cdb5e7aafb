package logger

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	assert.Empty(t, NewOptions().Validate())

	o := NewConsoleOptions()
	assert.Empty(t, o.Validate())
	assert.Equal(t, []string{"stderr"}, o.OutputPaths)
	assert.Equal(t, "console", o.Format)
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	o.Format = "xml"
	o.OutputPaths = nil
	assert.Len(t, o.Validate(), 2)

	o = NewOptions()
	o.Level = "LOUD"
	assert.Len(t, o.Validate(), 1)
}

func TestFlagsWithPrefix(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs, "cli")

	require.NoError(t, fs.Parse([]string{"--cli.log.level=DEBUG", "--cli.log.rotation.max-backups=3"}))
	assert.Equal(t, "DEBUG", o.Level)
	assert.Equal(t, 3, o.Rotation.MaxBackups)
}

func TestInitStampsService(t *testing.T) {
	o := NewConsoleOptions()
	require.NoError(t, o.Init("sbs-test", "v0.0.1"))
	assert.Equal(t, "sbs-test", o.GetInitialFields()["service.name"])
}
