// moth-decode: Decode an AudioMoth settings packet
//
// This tool reads a settings packet as hex, from the arguments or stdin, and
// prints the recording settings it carries in the settings file format
// accepted by moth-encode. The packet layout is chosen by --firmware.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/config"
	"github.com/herlein/gomoth/pkg/logging"
	"github.com/herlein/gomoth/pkg/protocol"
)

func main() {
	format := pflag.StringP("format", "f", "json", "Output format (json or yaml)")
	report := pflag.BoolP("report", "r", false, "Input is a SET_APP_PACKET report, opcode first")
	config.AddFlags(pflag.CommandLine)
	pflag.Parse()

	if *format != "json" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "Error: Unknown format %q\n", *format)
		os.Exit(1)
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
	log := logs.Logger("moth-decode")

	firmware, err := opts.FirmwareVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Without an explicit zone, local time settings keep the offset the
	// packet carries
	var codec audiomoth.Codec
	if opts.Timezone != "" {
		if codec.Location, err = opts.Location(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	packet, err := readHex(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Debug("decoding packet", "firmware", firmware, "length", len(packet), "bytes", bytecodec.HexDump(packet))

	var settings audiomoth.RecordingSettings
	if *report {
		reply, err := protocol.Decoder{Codec: codec, Firmware: firmware}.Decode(protocol.SetAppPacket, packet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to decode report: %v\n", err)
			os.Exit(1)
		}
		settings = *reply.Settings
	} else {
		settings, err = codec.Decode(packet, firmware)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to decode packet: %v\n", err)
			os.Exit(1)
		}
	}
	settings.Firmware = firmware

	file := config.NewSettingsFile(settings)
	var out []byte
	switch *format {
	case "yaml":
		out, err = yaml.Marshal(file)
	default:
		out, err = json.MarshalIndent(file, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to marshal settings: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}

// readHex takes the packet from the arguments, or stdin when there are none
func readHex(args []string) ([]byte, error) {
	input := strings.Join(args, " ")
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		input = string(data)
	}
	return bytecodec.ParseHex(input)
}
