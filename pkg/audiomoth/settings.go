package audiomoth

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// RecordingSettings is the configuration written to the device with
// SET_APP_PACKET and read back from its echo.
//
// Settings are plain values: copy and modify them freely before encoding.
type RecordingSettings struct {
	// Firmware selects the packet layout and sample rate table.
	// The zero value means CurrentFirmware.
	Firmware FirmwareVersion

	// Periods is the daily schedule, in local minutes when LocalTime is set
	// and UTC minutes otherwise
	Periods []TimePeriod

	LEDEnabled               bool
	LowVoltageCutoffEnabled  bool
	BatteryLevelCheckEnabled bool

	LocalTime bool
	// Location is the zone used for LocalTime schedules and dates (UTC when nil)
	Location *time.Location

	DutyCycleEnabled      bool
	Gain                  int8
	RecordDurationSeconds uint16
	SleepDurationSeconds  uint16
	SampleRateHz          int

	Filter Filter
	// AmplitudeThreshold of 0 disables amplitude triggered recording
	AmplitudeThreshold uint16

	// Recording date bounds, both inclusive. The zero Date means no bound.
	FirstRecordingDate civil.Date
	LastRecordingDate  civil.Date
}

// Schedule returns the periods sorted by start minute
func (s RecordingSettings) Schedule() []TimePeriod {
	return SortPeriods(s.Periods)
}

// Legacy reports whether the target firmware uses the reduced sample rate table
func (s RecordingSettings) Legacy() bool {
	return s.Firmware.OrCurrent().Legacy()
}

// Layout is the packet layout used for the target firmware
func (s RecordingSettings) Layout() Layout {
	return LayoutFor(s.Firmware.OrCurrent())
}

// AmplitudeThresholdEnabled reports whether recording is amplitude triggered
func (s RecordingSettings) AmplitudeThresholdEnabled() bool {
	return s.AmplitudeThreshold > 0
}

// FilterEnabled reports whether a band filter is configured
func (s RecordingSettings) FilterEnabled() bool {
	return s.Filter.Enabled()
}

// zone returns the location schedules and dates are expressed in
func (s RecordingSettings) zone() *time.Location {
	if s.LocalTime && s.Location != nil {
		return s.Location
	}
	return time.UTC
}

// Validate checks the settings a device would accept
func (s RecordingSettings) Validate() error {
	if len(s.Periods) > MaxPeriods {
		return fmt.Errorf("%w: %d periods, at most %d", ErrTooManyPeriods, len(s.Periods), MaxPeriods)
	}

	schedule := s.Schedule()
	for i, p := range schedule {
		if err := p.Validate(); err != nil {
			return err
		}
		if i > 0 && p.StartMinute < schedule[i-1].EndMinute {
			return fmt.Errorf("%w: %s overlaps %s", ErrInvalidPeriod, p, schedule[i-1])
		}
	}

	if err := s.Filter.Validate(); err != nil {
		return err
	}

	if s.DutyCycleEnabled && s.RecordDurationSeconds == 0 {
		return fmt.Errorf("%w: duty cycle needs a record duration", ErrInvalidDuration)
	}

	if !s.FirstRecordingDate.IsZero() && !s.LastRecordingDate.IsZero() &&
		s.LastRecordingDate.Before(s.FirstRecordingDate) {
		return fmt.Errorf("%w: last recording date %s before first %s",
			ErrInvalidDuration, s.LastRecordingDate, s.FirstRecordingDate)
	}
	return nil
}

// Equal compares two settings field by field. Schedules are compared in
// start order, filters by what reaches the wire, and Location is ignored.
func (s RecordingSettings) Equal(o RecordingSettings) bool {
	if s.Firmware.OrCurrent() != o.Firmware.OrCurrent() ||
		s.LEDEnabled != o.LEDEnabled ||
		s.LowVoltageCutoffEnabled != o.LowVoltageCutoffEnabled ||
		s.BatteryLevelCheckEnabled != o.BatteryLevelCheckEnabled ||
		s.LocalTime != o.LocalTime ||
		s.DutyCycleEnabled != o.DutyCycleEnabled ||
		s.Gain != o.Gain ||
		s.RecordDurationSeconds != o.RecordDurationSeconds ||
		s.SleepDurationSeconds != o.SleepDurationSeconds ||
		s.SampleRateHz != o.SampleRateHz ||
		s.Filter.normalized() != o.Filter.normalized() ||
		s.AmplitudeThreshold != o.AmplitudeThreshold ||
		s.FirstRecordingDate != o.FirstRecordingDate ||
		s.LastRecordingDate != o.LastRecordingDate {
		return false
	}

	a, b := s.Schedule(), o.Schedule()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
