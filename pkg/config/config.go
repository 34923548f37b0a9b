// Package config reads recording settings files and resolves the options
// shared by the command line tools.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/viper"

	"github.com/herlein/gomoth/pkg/audiomoth"
)

// SettingsFile is the on-disk form of audiomoth.RecordingSettings. Key names
// follow the AudioMoth configuration app's .config files. Durations are in
// seconds, rates and cutoffs in Hz and dates in YYYY-MM-DD form.
type SettingsFile struct {
	TimePeriods                  []audiomoth.TimePeriod `mapstructure:"timePeriods" json:"timePeriods" yaml:"timePeriods"`
	LEDEnabled                   bool                   `mapstructure:"ledEnabled" json:"ledEnabled" yaml:"ledEnabled"`
	LowVoltageCutoffEnabled      bool                   `mapstructure:"lowVoltageCutoffEnabled" json:"lowVoltageCutoffEnabled" yaml:"lowVoltageCutoffEnabled"`
	BatteryLevelCheckEnabled     bool                   `mapstructure:"batteryLevelCheckEnabled" json:"batteryLevelCheckEnabled" yaml:"batteryLevelCheckEnabled"`
	SampleRate                   int                    `mapstructure:"sampleRate" json:"sampleRate" yaml:"sampleRate"`
	Gain                         int                    `mapstructure:"gain" json:"gain" yaml:"gain"`
	RecordDuration               int                    `mapstructure:"recordDuration" json:"recordDuration" yaml:"recordDuration"`
	SleepDuration                int                    `mapstructure:"sleepDuration" json:"sleepDuration" yaml:"sleepDuration"`
	LocalTime                    bool                   `mapstructure:"localTime" json:"localTime" yaml:"localTime"`
	DutyEnabled                  bool                   `mapstructure:"dutyEnabled" json:"dutyEnabled" yaml:"dutyEnabled"`
	PassFiltersEnabled           bool                   `mapstructure:"passFiltersEnabled" json:"passFiltersEnabled" yaml:"passFiltersEnabled"`
	FilterType                   string                 `mapstructure:"filterType" json:"filterType,omitempty" yaml:"filterType,omitempty"`
	LowerFilter                  int                    `mapstructure:"lowerFilter" json:"lowerFilter,omitempty" yaml:"lowerFilter,omitempty"`
	HigherFilter                 int                    `mapstructure:"higherFilter" json:"higherFilter,omitempty" yaml:"higherFilter,omitempty"`
	AmplitudeThresholdingEnabled bool                   `mapstructure:"amplitudeThresholdingEnabled" json:"amplitudeThresholdingEnabled" yaml:"amplitudeThresholdingEnabled"`
	AmplitudeThreshold           int                    `mapstructure:"amplitudeThreshold" json:"amplitudeThreshold,omitempty" yaml:"amplitudeThreshold,omitempty"`
	FirstRecordingDate           string                 `mapstructure:"firstRecordingDate" json:"firstRecordingDate,omitempty" yaml:"firstRecordingDate,omitempty"`
	LastRecordingDate            string                 `mapstructure:"lastRecordingDate" json:"lastRecordingDate,omitempty" yaml:"lastRecordingDate,omitempty"`
	// Timezone is an IANA zone name for local time schedules
	Timezone        string `mapstructure:"timezone" json:"timezone,omitempty" yaml:"timezone,omitempty"`
	FirmwareVersion string `mapstructure:"firmwareVersion" json:"firmwareVersion,omitempty" yaml:"firmwareVersion,omitempty"`
}

// DefaultSettingsFile returns the values used for keys a settings file omits
func DefaultSettingsFile() SettingsFile {
	return SettingsFile{
		TimePeriods:              []audiomoth.TimePeriod{{StartMinute: 0, EndMinute: audiomoth.MinutesPerDay}},
		LEDEnabled:               true,
		LowVoltageCutoffEnabled:  true,
		BatteryLevelCheckEnabled: true,
		SampleRate:               48000,
		Gain:                     2,
		RecordDuration:           55,
		SleepDuration:            5,
		DutyEnabled:              true,
	}
}

// LoadSettingsFile reads a JSON, YAML or TOML settings file, chosen by extension
func LoadSettingsFile(path string) (*SettingsFile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := DefaultSettingsFile()
	v.SetDefault("ledEnabled", defaults.LEDEnabled)
	v.SetDefault("lowVoltageCutoffEnabled", defaults.LowVoltageCutoffEnabled)
	v.SetDefault("batteryLevelCheckEnabled", defaults.BatteryLevelCheckEnabled)
	v.SetDefault("sampleRate", defaults.SampleRate)
	v.SetDefault("gain", defaults.Gain)
	v.SetDefault("recordDuration", defaults.RecordDuration)
	v.SetDefault("sleepDuration", defaults.SleepDuration)
	v.SetDefault("dutyEnabled", defaults.DutyEnabled)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var file SettingsFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode settings file: %w", err)
	}
	if !v.IsSet("timePeriods") {
		file.TimePeriods = defaults.TimePeriods
	}
	return &file, nil
}

// ToSettings converts the file into device settings. loc is the zone for
// local time schedules when the file names none.
func (f *SettingsFile) ToSettings(loc *time.Location) (audiomoth.RecordingSettings, error) {
	s := audiomoth.RecordingSettings{
		Periods:                  append([]audiomoth.TimePeriod(nil), f.TimePeriods...),
		LEDEnabled:               f.LEDEnabled,
		LowVoltageCutoffEnabled:  f.LowVoltageCutoffEnabled,
		BatteryLevelCheckEnabled: f.BatteryLevelCheckEnabled,
		LocalTime:                f.LocalTime,
		DutyCycleEnabled:         f.DutyEnabled,
		SampleRateHz:             f.SampleRate,
	}

	var err error
	if s.Gain, err = toInt8("gain", f.Gain); err != nil {
		return s, err
	}
	if s.RecordDurationSeconds, err = toUint16("recordDuration", f.RecordDuration); err != nil {
		return s, err
	}
	if s.SleepDurationSeconds, err = toUint16("sleepDuration", f.SleepDuration); err != nil {
		return s, err
	}
	if f.AmplitudeThresholdingEnabled {
		if s.AmplitudeThreshold, err = toUint16("amplitudeThreshold", f.AmplitudeThreshold); err != nil {
			return s, err
		}
	}

	if f.PassFiltersEnabled {
		kind, err := audiomoth.ParseFilterKind(f.FilterType)
		if err != nil {
			return s, fmt.Errorf("%w: %v", ErrInvalidSettingsFile, err)
		}
		if kind == audiomoth.FilterDisabled {
			return s, fmt.Errorf("%w: passFiltersEnabled needs a filterType of low, high or band", ErrInvalidSettingsFile)
		}
		switch kind {
		case audiomoth.FilterLow:
			s.Filter = audiomoth.LowPass(f.HigherFilter)
		case audiomoth.FilterHigh:
			s.Filter = audiomoth.HighPass(f.LowerFilter)
		case audiomoth.FilterBand:
			s.Filter = audiomoth.BandPass(f.LowerFilter, f.HigherFilter)
		}
	}

	if s.FirstRecordingDate, err = parseDate("firstRecordingDate", f.FirstRecordingDate); err != nil {
		return s, err
	}
	if s.LastRecordingDate, err = parseDate("lastRecordingDate", f.LastRecordingDate); err != nil {
		return s, err
	}

	if f.FirmwareVersion != "" {
		if s.Firmware, err = audiomoth.ParseFirmwareVersion(f.FirmwareVersion); err != nil {
			return s, fmt.Errorf("%w: %v", ErrInvalidSettingsFile, err)
		}
	}

	if s.LocalTime {
		s.Location = loc
		if f.Timezone != "" {
			if s.Location, err = time.LoadLocation(f.Timezone); err != nil {
				return s, fmt.Errorf("%w: timezone: %v", ErrInvalidSettingsFile, err)
			}
		}
	}
	return s, nil
}

// NewSettingsFile is the inverse of ToSettings
func NewSettingsFile(s audiomoth.RecordingSettings) SettingsFile {
	f := SettingsFile{
		TimePeriods:                  s.Schedule(),
		LEDEnabled:                   s.LEDEnabled,
		LowVoltageCutoffEnabled:      s.LowVoltageCutoffEnabled,
		BatteryLevelCheckEnabled:     s.BatteryLevelCheckEnabled,
		SampleRate:                   s.SampleRateHz,
		Gain:                         int(s.Gain),
		RecordDuration:               int(s.RecordDurationSeconds),
		SleepDuration:                int(s.SleepDurationSeconds),
		LocalTime:                    s.LocalTime,
		DutyEnabled:                  s.DutyCycleEnabled,
		PassFiltersEnabled:           s.FilterEnabled(),
		AmplitudeThresholdingEnabled: s.AmplitudeThresholdEnabled(),
		AmplitudeThreshold:           int(s.AmplitudeThreshold),
	}
	if s.FilterEnabled() {
		f.FilterType = s.Filter.Kind.String()
		f.LowerFilter = s.Filter.LowHz
		f.HigherFilter = s.Filter.HighHz
	}
	if !s.FirstRecordingDate.IsZero() {
		f.FirstRecordingDate = s.FirstRecordingDate.String()
	}
	if !s.LastRecordingDate.IsZero() {
		f.LastRecordingDate = s.LastRecordingDate.String()
	}
	if s.LocalTime && s.Location != nil {
		f.Timezone = s.Location.String()
	}
	if !s.Firmware.IsZero() {
		f.FirmwareVersion = s.Firmware.String()
	}
	return f
}

func toInt8(key string, v int) (int8, error) {
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, fmt.Errorf("%w: %s %d out of range", ErrInvalidSettingsFile, key, v)
	}
	return int8(v), nil
}

func toUint16(key string, v int) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %s %d out of range", ErrInvalidSettingsFile, key, v)
	}
	return uint16(v), nil
}

func parseDate(key, value string) (civil.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %s: %v", ErrInvalidSettingsFile, key, err)
	}
	return d, nil
}
