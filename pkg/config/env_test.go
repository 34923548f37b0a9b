package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/gomoth/pkg/audiomoth"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadOptionsDefaults(t *testing.T) {
	t.Setenv("GOMOTH_LOG_LEVEL", "")
	t.Setenv("GOMOTH_FIRMWARE", "")

	opts, err := LoadOptions(newFlags(t), filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	assert.Equal(t, "info", opts.LogLevel)
	v, err := opts.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, audiomoth.CurrentFirmware, v)

	loc, err := opts.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadOptionsPrecedence(t *testing.T) {
	t.Setenv("GOMOTH_LOG_LEVEL", "debug")
	t.Setenv("GOMOTH_TIMEZONE", "Asia/Tokyo")

	opts, err := LoadOptions(newFlags(t, "--timezone=UTC"), filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	assert.Equal(t, "debug", opts.LogLevel, "environment beats flag defaults")
	assert.Equal(t, "UTC", opts.Timezone, "explicit flags beat the environment")
}

func TestLoadOptionsEnvFile(t *testing.T) {
	t.Cleanup(func() { os.Unsetenv("GOMOTH_LOG_FILE") })
	os.Unsetenv("GOMOTH_LOG_FILE")

	envFile := filepath.Join(t.TempDir(), "moth.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GOMOTH_LOG_FILE=/tmp/moth.log\n"), 0o600))

	opts, err := LoadOptions(newFlags(t), envFile)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/moth.log", opts.LogFile)
}

func TestOptionsInvalidValues(t *testing.T) {
	_, err := Options{Timezone: "Nowhere/Special"}.Location()
	assert.Error(t, err)

	_, err = Options{Firmware: "1.x"}.FirmwareVersion()
	assert.ErrorIs(t, err, audiomoth.ErrInvalidFirmwareVersion)
}

func TestOptionsWithoutFlags(t *testing.T) {
	t.Setenv("GOMOTH_FIRMWARE", "1.2.2")

	opts, err := LoadOptions(nil, filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	v, err := opts.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, audiomoth.FirmwareVersion{Major: 1, Minor: 2, Patch: 2}, v)
}
