// moth-encode: Encode recording settings into an AudioMoth settings packet
//
// This tool reads a settings file (JSON, YAML or TOML) or a named preset and
// prints the packet the configuration app would send, as hex. With -r the
// packet is wrapped in a full SET_APP_PACKET report.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/config"
	"github.com/herlein/gomoth/pkg/logging"
	"github.com/herlein/gomoth/pkg/presets"
	"github.com/herlein/gomoth/pkg/protocol"
)

func main() {
	settingsFile := pflag.StringP("settings", "s", "", "Settings file (JSON, YAML or TOML)")
	presetName := pflag.StringP("preset", "p", "", "Preset name, used when no settings file is given")
	listPresets := pflag.BoolP("list", "l", false, "List presets and exit")
	at := pflag.String("at", "", "Encode as of this RFC 3339 instant instead of now")
	report := pflag.BoolP("report", "r", false, "Print a full SET_APP_PACKET report")
	config.AddFlags(pflag.CommandLine)
	pflag.Parse()

	if *listPresets {
		for _, p := range presets.All() {
			fmt.Printf("%-12s %s\n", p.Name, p.Description)
		}
		return
	}

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
	log := logs.Logger("moth-encode")

	settings, err := config.ResolveSettings(*settingsFile, *presetName, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	if *at != "" {
		if now, err = time.Parse(time.RFC3339, *at); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Invalid --at time: %v\n", err)
			os.Exit(1)
		}
	}
	codec := audiomoth.Codec{Now: func() time.Time { return now }}

	var packet []byte
	if *report {
		packet, err = protocol.SetAppPacketRequest(codec, settings)
	} else {
		packet, err = codec.Encode(settings)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode settings: %v\n", err)
		os.Exit(1)
	}

	log.Debug("encoded settings",
		"firmware", settings.Firmware,
		"length", len(packet),
		"sample_rate_hz", settings.SampleRateHz,
		"periods", len(settings.Periods))

	fmt.Println(bytecodec.HexDump(packet))
}
