package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/herlein/gomoth/pkg/audiomoth"
)

// EnvPrefix is prepended to option names looked up in the environment,
// so --log-level is also read from GOMOTH_LOG_LEVEL.
const EnvPrefix = "GOMOTH"

// Options are the settings shared by every tool
type Options struct {
	LogLevel string
	LogFile  string
	// Timezone names the zone used for local time schedules. Empty means
	// the host zone.
	Timezone string
	// Firmware is the version assumed when the device has not been asked
	Firmware string
}

// AddFlags registers the shared options on fs
func AddFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "also write logs to this file")
	fs.String("timezone", "", "IANA zone for local time schedules (default host zone)")
	fs.String("firmware", audiomoth.CurrentFirmware.String(), "assumed device firmware version")
}

// LoadOptions resolves the shared options. Flags set on the command line win,
// then GOMOTH_* environment variables, then the flag defaults. envFiles are
// loaded into the environment first; with none given a .env file in the
// working directory is used if present.
func LoadOptions(fs *pflag.FlagSet, envFiles ...string) (Options, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", "")
	v.SetDefault("timezone", "")
	v.SetDefault("firmware", audiomoth.CurrentFirmware.String())

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Options{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	return Options{
		LogLevel: v.GetString("log-level"),
		LogFile:  v.GetString("log-file"),
		Timezone: v.GetString("timezone"),
		Firmware: v.GetString("firmware"),
	}, nil
}

// Location returns the zone for local time schedules
func (o Options) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.Timezone, err)
	}
	return loc, nil
}

// FirmwareVersion parses the assumed firmware version
func (o Options) FirmwareVersion() (audiomoth.FirmwareVersion, error) {
	if o.Firmware == "" {
		return audiomoth.CurrentFirmware, nil
	}
	return audiomoth.ParseFirmwareVersion(o.Firmware)
}
