package audiomoth

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestSettingsEqual(t *testing.T) {
	a := baseSettings()
	b := baseSettings()
	b.Periods = []TimePeriod{{0, 300}, {600, 660}}
	b.Location = time.FixedZone("X", 3600)
	b.Filter = Filter{Kind: FilterLow, LowHz: 700, HighHz: 1000}

	assert.True(t, a.Equal(b), "order, location and unused filter side are ignored")

	b.Firmware = CurrentFirmware
	assert.True(t, a.Equal(b), "zero firmware means current")

	changes := map[string]func(*RecordingSettings){
		"gain":       func(s *RecordingSettings) { s.Gain = 3 },
		"period":     func(s *RecordingSettings) { s.Periods[0].EndMinute++ },
		"count":      func(s *RecordingSettings) { s.Periods = s.Periods[:1] },
		"led":        func(s *RecordingSettings) { s.LEDEnabled = false },
		"duty":       func(s *RecordingSettings) { s.DutyCycleEnabled = false },
		"rate":       func(s *RecordingSettings) { s.SampleRateHz = 96000 },
		"filter":     func(s *RecordingSettings) { s.Filter = HighPass(1000) },
		"threshold":  func(s *RecordingSettings) { s.AmplitudeThreshold = 1 },
		"first date": func(s *RecordingSettings) { s.FirstRecordingDate = civil.Date{} },
		"firmware":   func(s *RecordingSettings) { s.Firmware = FirmwareVersion{1, 4, 0} },
		"local time": func(s *RecordingSettings) { s.LocalTime = true },
	}
	for name, change := range changes {
		c := baseSettings()
		change(&c)
		assert.False(t, a.Equal(c), name)
	}
}

func TestSettingsValidateDates(t *testing.T) {
	s := baseSettings()
	s.FirstRecordingDate, s.LastRecordingDate = s.LastRecordingDate, s.FirstRecordingDate
	assert.ErrorIs(t, s.Validate(), ErrInvalidDuration)

	s.LastRecordingDate = civil.Date{}
	assert.NoError(t, s.Validate())
}

func TestSettingsAccessors(t *testing.T) {
	s := baseSettings()
	assert.False(t, s.AmplitudeThresholdEnabled())
	assert.True(t, s.FilterEnabled())
	assert.False(t, s.Legacy())
	assert.Equal(t, PacketLength, s.Layout().Length)
	assert.Equal(t, []TimePeriod{{0, 300}, {600, 660}}, s.Schedule())

	s.Firmware = FirmwareVersion{1, 2, 1}
	assert.True(t, s.Legacy())
	assert.Equal(t, LengthV121, s.Layout().Length)
}
