// Package presets provides ready-made recording configurations for common
// AudioMoth deployments. Each factory returns a fresh copy that callers may
// adjust before encoding.
package presets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/herlein/gomoth/pkg/audiomoth"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named recording configuration
type Preset struct {
	Name        string
	Description string
	Settings    audiomoth.RecordingSettings
}

// medium gain, the AudioMoth default
const defaultGain = 2

func period(startHour, endHour int) audiomoth.TimePeriod {
	return audiomoth.TimePeriod{StartMinute: startHour * 60, EndMinute: endHour * 60}
}

// NewDefault records 55 s of every minute, all day, at 48 kHz
func NewDefault() *Preset {
	return &Preset{
		Name:        "default",
		Description: "48 kHz, 55 s every minute, all day",
		Settings: audiomoth.RecordingSettings{
			Periods:                  []audiomoth.TimePeriod{period(0, 24)},
			LEDEnabled:               true,
			LowVoltageCutoffEnabled:  true,
			BatteryLevelCheckEnabled: true,
			DutyCycleEnabled:         true,
			Gain:                     defaultGain,
			RecordDurationSeconds:    55,
			SleepDurationSeconds:     5,
			SampleRateHz:             48000,
		},
	}
}

// NewUltrasonic targets bat calls: full rate from dusk to dawn, high-pass
// filtered and triggered by amplitude
func NewUltrasonic() *Preset {
	return &Preset{
		Name:        "ultrasonic",
		Description: "384 kHz from dusk to dawn, 8 kHz high-pass, amplitude triggered",
		Settings: audiomoth.RecordingSettings{
			Periods:                  []audiomoth.TimePeriod{period(0, 6), period(18, 24)},
			LowVoltageCutoffEnabled:  true,
			BatteryLevelCheckEnabled: true,
			LocalTime:                true,
			DutyCycleEnabled:         true,
			Gain:                     defaultGain,
			RecordDurationSeconds:    30,
			SleepDurationSeconds:     30,
			SampleRateHz:             384000,
			Filter:                   audiomoth.HighPass(8000),
			AmplitudeThreshold:       256,
		},
	}
}

// NewDawnChorus records continuously through the morning chorus
func NewDawnChorus() *Preset {
	return &Preset{
		Name:        "dawn-chorus",
		Description: "48 kHz continuous from 04:00 to 08:00 local time",
		Settings: audiomoth.RecordingSettings{
			Periods:                  []audiomoth.TimePeriod{period(4, 8)},
			LEDEnabled:               true,
			LowVoltageCutoffEnabled:  true,
			BatteryLevelCheckEnabled: true,
			LocalTime:                true,
			Gain:                     defaultGain,
			SampleRateHz:             48000,
		},
	}
}

// NewLowPower samples the soundscape for long deployments
func NewLowPower() *Preset {
	return &Preset{
		Name:        "low-power",
		Description: "8 kHz, 10 s every 10 minutes, LED off",
		Settings: audiomoth.RecordingSettings{
			Periods:                  []audiomoth.TimePeriod{period(0, 24)},
			LowVoltageCutoffEnabled:  true,
			BatteryLevelCheckEnabled: true,
			DutyCycleEnabled:         true,
			Gain:                     defaultGain,
			RecordDurationSeconds:    10,
			SleepDurationSeconds:     590,
			SampleRateHz:             8000,
		},
	}
}

var factories = map[string]func() *Preset{
	"default":     NewDefault,
	"ultrasonic":  NewUltrasonic,
	"dawn-chorus": NewDawnChorus,
	"low-power":   NewLowPower,
}

// Names lists the presets alphabetically
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a fresh copy of the named preset
func Get(name string) (*Preset, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPreset, name, Names())
	}
	return factory(), nil
}

// All returns a fresh copy of every preset, ordered by name
func All() []*Preset {
	presets := make([]*Preset, 0, len(factories))
	for _, name := range Names() {
		presets = append(presets, factories[name]())
	}
	return presets
}
