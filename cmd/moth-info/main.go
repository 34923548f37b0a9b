// moth-info: Decode a reply read from an AudioMoth
//
// This tool decodes a device reply given as hex, from the arguments or stdin.
// By default the reply is taken to answer GET_APP_PACKET and the device
// identification block is printed; -o selects another opcode.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/config"
	"github.com/herlein/gomoth/pkg/logging"
	"github.com/herlein/gomoth/pkg/protocol"
)

func main() {
	opName := pflag.StringP("opcode", "o", protocol.GetAppPacket.String(), "Opcode the reply answers, by name or number")
	jsonOutput := pflag.Bool("json", false, "Output the decoded reply as JSON")
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
	log := logs.Logger("moth-info")

	op, err := protocol.ParseOpcode(*opName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	firmware, err := opts.FirmwareVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	input := strings.Join(pflag.Args(), " ")
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to read stdin: %v\n", err)
			os.Exit(1)
		}
		input = string(data)
	}
	packet, err := bytecodec.ParseHex(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Debug("decoding reply", "opcode", op, "length", len(packet))

	reply, err := protocol.Decoder{Firmware: firmware}.Decode(op, packet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to decode reply: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		var data []byte
		if reply.Settings != nil {
			data, err = json.MarshalIndent(config.NewSettingsFile(*reply.Settings), "", "  ")
		} else {
			data, err = json.MarshalIndent(reply, "", "  ")
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to marshal reply: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printReply(reply)
}

func printReply(r protocol.Reply) {
	fmt.Printf("Reply:       %s\n", r.Opcode)
	switch r.Opcode {
	case protocol.GetAppPacket:
		info := r.Info
		fmt.Printf("Device ID:   %s\n", info.DeviceID)
		fmt.Printf("Firmware:    %s", info.FirmwareVersion)
		if info.Version.Legacy() {
			fmt.Print(" (legacy sample rates)")
		}
		fmt.Println()
		fmt.Printf("Battery:     %s\n", info.Battery)
		if info.HasDate() {
			fmt.Printf("Clock:       %s\n", info.Date.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("Clock:       not set")
		}
	case protocol.GetTime, protocol.SetTime:
		if r.Time.IsZero() {
			fmt.Println("Clock:       not set")
		} else {
			fmt.Printf("Clock:       %s\n", r.Time.Format("2006-01-02 15:04:05 MST"))
		}
	case protocol.GetUID:
		fmt.Printf("Device ID:   %s\n", r.DeviceID)
	case protocol.GetBattery:
		fmt.Printf("Battery:     %s\n", r.Battery)
	case protocol.GetFirmwareVersion:
		fmt.Printf("Firmware:    %s\n", r.Firmware)
	case protocol.GetFirmwareDescription:
		fmt.Printf("Description: %s\n", r.Description)
	case protocol.QueryBootloader, protocol.SwitchToBootloader:
		fmt.Printf("Bootloader:  %t\n", r.Bootloader)
	case protocol.SetAppPacket:
		s := r.Settings
		fmt.Printf("Sample rate: %d Hz\n", s.SampleRateHz)
		fmt.Printf("Periods:     %v\n", s.Schedule())
		fmt.Printf("Filter:      %s\n", s.Filter)
	}
}
