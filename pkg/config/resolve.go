package config

import (
	"errors"
	"fmt"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/presets"
)

var ErrNoSettings = errors.New("no settings file or preset given")

// ResolveSettings loads settings from path, or from the named preset when
// path is empty. Local time schedules without a zone get the zone from opts,
// and settings without a firmware version get the assumed firmware.
func ResolveSettings(path, preset string, opts Options) (audiomoth.RecordingSettings, error) {
	loc, err := opts.Location()
	if err != nil {
		return audiomoth.RecordingSettings{}, err
	}
	firmware, err := opts.FirmwareVersion()
	if err != nil {
		return audiomoth.RecordingSettings{}, err
	}

	var s audiomoth.RecordingSettings
	switch {
	case path != "":
		file, err := LoadSettingsFile(path)
		if err != nil {
			return s, err
		}
		if s, err = file.ToSettings(loc); err != nil {
			return s, fmt.Errorf("%s: %w", path, err)
		}
	case preset != "":
		p, err := presets.Get(preset)
		if err != nil {
			return s, err
		}
		s = p.Settings
		if s.LocalTime && s.Location == nil {
			s.Location = loc
		}
	default:
		return s, ErrNoSettings
	}

	if s.Firmware.IsZero() {
		s.Firmware = firmware
	}
	return s, nil
}
