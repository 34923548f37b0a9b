// moth-sim: Configure an emulated AudioMoth end to end
//
// This tool runs the exchange the configuration app performs against a real
// device: identify, set the clock, write the recording settings and verify
// the echo. The device is emulated in memory, so the tool also serves to
// check a settings file against a given firmware version.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/config"
	"github.com/herlein/gomoth/pkg/lifespan"
	"github.com/herlein/gomoth/pkg/logging"
	"github.com/herlein/gomoth/pkg/session"
)

func main() {
	defaults := session.DefaultEmulatorConfig()

	settingsFile := pflag.StringP("settings", "s", "", "Settings file (JSON, YAML or TOML)")
	presetName := pflag.StringP("preset", "p", "default", "Preset name, used when no settings file is given")
	deviceID := pflag.String("device-id", defaults.DeviceID, "Emulated device ID (16 hex digits)")
	deviceFirmware := pflag.String("device-firmware", defaults.Firmware.String(), "Emulated firmware version")
	batteryLevel := pflag.Uint8("battery-level", defaults.BatteryLevel, "Emulated battery level (0-15)")
	timeout := pflag.Duration("timeout", session.DefaultTimeout, "Timeout for each exchange")
	verbose := pflag.BoolP("verbose", "v", false, "Print the settings packet")
	config.AddFlags(pflag.CommandLine)
	pflag.Parse()

	opts, err := config.LoadOptions(pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logs := logging.NewManager(nil)
	if err := logs.Configure(opts.LogLevel, opts.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logs.Close()
	log := logs.Logger("moth-sim")

	firmware, err := audiomoth.ParseFirmwareVersion(*deviceFirmware)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	emulatorConfig := defaults
	emulatorConfig.DeviceID = *deviceID
	emulatorConfig.Firmware = firmware
	emulatorConfig.BatteryLevel = *batteryLevel

	device, err := session.NewEmulator(emulatorConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Debug("emulator ready", "device", device.String())

	settings, err := config.ResolveSettings(*settingsFile, *presetName, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(device,
		session.WithLogger(logs.Logger("session")),
		session.WithTimeout(*timeout))
	ctx := context.Background()

	info, err := sess.Identify(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to identify device: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected to: %s\n", device)
	fmt.Printf("Battery:      %s\n", info.Battery)

	// The device decides the packet layout
	settings.Firmware = info.Version

	clock, err := sess.SetTime(ctx, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to set time: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Clock:        %s\n", clock.Format(time.RFC3339))

	echo, err := sess.Configure(ctx, settings)
	if errors.Is(err, session.ErrVerifyMismatch) {
		fmt.Fprintf(os.Stderr, "Error: Device reported different settings: %v\n", config.NewSettingsFile(echo))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to configure device: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Settings:     verified")

	if *verbose {
		fmt.Printf("Packet:       %s\n", bytecodec.HexDump(device.Settings()))
	}

	estimate, err := lifespan.Calculate(echo)
	if err != nil {
		log.Warn("could not estimate lifespan", "error", err)
		return
	}
	fmt.Printf("Daily:        %d files, %s, %.0f mAh\n",
		estimate.TotalRecordingCount, estimate.TotalFileSize(), estimate.DailyEnergyMAh)
}
