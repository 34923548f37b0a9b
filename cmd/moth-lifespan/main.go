// moth-lifespan: Estimate the daily storage and energy cost of a schedule
//
// This tool reads a settings file or preset and prints how many files a day
// of recording produces, how large they are and how much charge the device
// draws. With --days and --battery it also projects a whole deployment.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/herlein/gomoth/pkg/config"
	"github.com/herlein/gomoth/pkg/lifespan"
	"github.com/herlein/gomoth/pkg/logging"
)

func main() {
	settingsFile := pflag.StringP("settings", "s", "", "Settings file (JSON, YAML or TOML)")
	presetName := pflag.StringP("preset", "p", "", "Preset name, used when no settings file is given")
	days := pflag.IntP("days", "d", 0, "Project storage and energy over this many days")
	batteryMAh := pflag.Float64P("battery", "b", 0, "Battery capacity in mAh, to estimate deployment length")
	jsonOutput := pflag.Bool("json", false, "Output the estimate as JSON")
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
	log := logs.Logger("moth-lifespan")

	settings, err := config.ResolveSettings(*settingsFile, *presetName, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	estimate, err := lifespan.Calculate(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to estimate lifespan: %v\n", err)
		os.Exit(1)
	}
	log.Debug("estimated schedule", "recordings", estimate.TotalRecordingCount, "energy_mah", estimate.DailyEnergyMAh)

	if *jsonOutput {
		data, err := json.MarshalIndent(estimate, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to marshal estimate: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printEstimate(estimate)

	if *days > 0 {
		total := uint64(estimate.TotalSizeBytes) * uint64(*days)
		fmt.Printf("Over %s days: %s of storage, %s mAh\n",
			humanize.Comma(int64(*days)),
			humanize.Bytes(total),
			humanize.Commaf(math.Round(estimate.DailyEnergyMAh*float64(*days))))
	}
	if *batteryMAh > 0 && estimate.DailyEnergyMAh > 0 {
		lasts := int64(*batteryMAh / estimate.DailyEnergyMAh)
		fmt.Printf("A %s mAh battery lasts about %s days\n",
			humanize.Commaf(*batteryMAh), humanize.Comma(lasts))
	}
}

func printEstimate(e lifespan.Estimate) {
	if e.TotalRecordingCount == 0 {
		fmt.Println("The schedule records nothing.")
		return
	}

	files := "file"
	if e.Plural {
		files = "files"
	}
	each := "each"
	if e.UpTo {
		each = "each up to"
	}
	fmt.Printf("Each day produces %s %s, %s %s, totalling %s.\n",
		humanize.Comma(e.TotalRecordingCount), files, each, e.FileSize, e.TotalFileSize())

	if e.TruncatedCount > 0 {
		fmt.Printf("%s complete and %s cut short to %d s by the end of a period.\n",
			humanize.Comma(e.CompleteCount), humanize.Comma(e.TruncatedCount), e.TruncatedSeconds)
	}
	fmt.Printf("Recording time: %s s a day.\n", humanize.Comma(e.TotalRecordingSeconds))
	if e.ExceedsWAVLimit {
		fmt.Println("Warning: files would exceed the 4 GB WAV limit.")
	}
	fmt.Printf("Daily energy use: %.0f mAh.\n", e.DailyEnergyMAh)
}
