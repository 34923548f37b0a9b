package audiomoth

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/samplerate"
)

// Settings packet offsets (58-byte layout; older layouts are prefixes)
const (
	offTime               = 0  // uint32 UNIX seconds
	offGain               = 4  // int8
	offClockDivider       = 5  // uint8
	offAcquisitionCycles  = 6  // uint8
	offOversampleRate     = 7  // uint8
	offRawSampleRate      = 8  // uint32
	offSampleRateDivider  = 12 // uint8
	offSleepDuration      = 13 // uint16 seconds
	offRecordDuration     = 15 // uint16 seconds
	offLED                = 17 // 0/1
	offPeriodCount        = 18 // uint8
	offPeriods            = 19 // MaxPeriods x (uint16 start, uint16 end)
	offTimezoneHours      = 39 // int8
	offLowVoltageCutoff   = 40 // 0/1
	offBatteryCheck       = 41 // 0 = enabled
	offTimezoneMinutes    = 42 // int8
	offDutyCycle          = 43 // 0 = enabled
	offFirstDate          = 44 // uint32 UNIX seconds, 0 = no bound
	offLastDate           = 48 // uint32 UNIX seconds, 0 = no bound
	offLowFilter          = 52 // uint16 x 100 Hz
	offHighFilter         = 54 // uint16 x 100 Hz
	offAmplitudeThreshold = 56 // uint16

	periodSize = 4
)

// Codec converts RecordingSettings to and from settings packets.
// The zero value is ready to use.
type Codec struct {
	// Now stamps encoded packets and fixes the timezone offset (time.Now when nil)
	Now func() time.Time

	// Location is given to decoded local-time settings. When nil a fixed zone
	// built from the packet's offset is used.
	Location *time.Location
}

func (c Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Encode validates s and serializes it using the layout of s.Firmware
func Encode(s RecordingSettings) ([]byte, error) {
	return Codec{}.Encode(s)
}

// Decode parses a settings packet written for the given firmware
func Decode(packet []byte, firmware FirmwareVersion) (RecordingSettings, error) {
	return Codec{}.Decode(packet, firmware)
}

// offsetMinutes is the zone's UTC offset at the encode instant
func (c Codec) offsetMinutes(s RecordingSettings, now time.Time) int {
	if !s.LocalTime {
		return 0
	}
	_, seconds := now.In(s.zone()).Zone()
	return seconds / 60
}

// Encode validates s and serializes it with the layout of s.Firmware, stamped with the codec's clock
func (c Codec) Encode(s RecordingSettings) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	rate, err := samplerate.Lookup(s.SampleRateHz, s.Legacy())
	if err != nil {
		return nil, err
	}

	layout := s.Layout()
	buf := make([]byte, PacketLength)
	now := c.now()
	offset := carriedOffset(c.offsetMinutes(s, now), layout)

	bytecodec.PutTimestamp(buf, offTime, now)
	buf[offGain] = byte(s.Gain)
	buf[offClockDivider] = rate.ClockDivider
	buf[offAcquisitionCycles] = rate.AcquisitionCycles
	buf[offOversampleRate] = rate.OversampleRate
	bytecodec.PutUint32(buf, offRawSampleRate, rate.RawSampleRate)
	buf[offSampleRateDivider] = rate.SampleRateDivider
	bytecodec.PutUint16(buf, offSleepDuration, s.SleepDurationSeconds)
	bytecodec.PutUint16(buf, offRecordDuration, s.RecordDurationSeconds)
	buf[offLED] = boolByte(s.LEDEnabled)

	// device minutes are UTC
	schedule := s.Schedule()
	buf[offPeriodCount] = byte(len(schedule))
	for i, p := range schedule {
		at := offPeriods + i*periodSize
		wire := shiftPeriod(p, -offset)
		bytecodec.PutUint16(buf, at, uint16(wire.StartMinute))
		bytecodec.PutUint16(buf, at+2, uint16(wire.EndMinute))
	}

	buf[offTimezoneHours] = byte(int8(offset / 60))
	buf[offLowVoltageCutoff] = boolByte(s.LowVoltageCutoffEnabled)
	buf[offBatteryCheck] = boolByte(!s.BatteryLevelCheckEnabled)
	buf[offTimezoneMinutes] = byte(int8(offset % 60))
	buf[offDutyCycle] = boolByte(!s.DutyCycleEnabled)

	zone := s.zone()
	if !s.FirstRecordingDate.IsZero() {
		bytecodec.PutTimestamp(buf, offFirstDate, s.FirstRecordingDate.In(zone))
	}
	if !s.LastRecordingDate.IsZero() {
		endOfDay := civil.DateTime{
			Date: s.LastRecordingDate,
			Time: civil.Time{Hour: 23, Minute: 59, Second: 59},
		}
		bytecodec.PutTimestamp(buf, offLastDate, endOfDay.In(zone))
	}

	low, high := s.Filter.codes()
	bytecodec.PutUint16(buf, offLowFilter, low)
	bytecodec.PutUint16(buf, offHighFilter, high)
	bytecodec.PutUint16(buf, offAmplitudeThreshold, s.AmplitudeThreshold)

	return buf[:layout.Length:layout.Length], nil
}

// Decode parses a settings packet written for firmware. Malformed periods and filters are
// rejected rather than folded into range.
func (c Codec) Decode(packet []byte, firmware FirmwareVersion) (RecordingSettings, error) {
	fw := firmware.OrCurrent()
	layout := LayoutFor(fw)
	if len(packet) < layout.Length {
		return RecordingSettings{}, fmt.Errorf("%w: %d bytes, firmware %s needs %d",
			ErrTruncatedPacket, len(packet), fw, layout.Length)
	}

	divider := packet[offSampleRateDivider]
	if divider == 0 {
		return RecordingSettings{}, ErrInvalidSampleRateDivider
	}
	rate, err := samplerate.Match(bytecodec.Uint32(packet, offRawSampleRate), divider, fw.Legacy())
	if err != nil {
		return RecordingSettings{}, err
	}

	count := int(packet[offPeriodCount])
	if count > MaxPeriods {
		return RecordingSettings{}, fmt.Errorf("%w: packet declares %d", ErrTooManyPeriods, count)
	}

	s := RecordingSettings{
		Firmware:              firmware,
		Gain:                  int8(packet[offGain]),
		SampleRateHz:          rate.Hz(),
		SleepDurationSeconds:  bytecodec.Uint16(packet, offSleepDuration),
		RecordDurationSeconds: bytecodec.Uint16(packet, offRecordDuration),
		LEDEnabled:            packet[offLED] != 0,
		DutyCycleEnabled:      true,
	}

	var offset int
	if layout.covers(offTimezoneHours, 1) {
		offset = int(int8(packet[offTimezoneHours])) * 60
		s.LocalTime = packet[offTimezoneHours] != 0
	}
	if layout.covers(offTimezoneMinutes, 1) {
		offset += int(int8(packet[offTimezoneMinutes]))
		s.LocalTime = s.LocalTime || packet[offTimezoneMinutes] != 0
	}
	if s.LocalTime {
		s.Location = c.Location
		if s.Location == nil {
			s.Location = fixedZone(offset)
		}
	}

	if count > 0 {
		s.Periods = make([]TimePeriod, count)
	}
	for i := range s.Periods {
		at := offPeriods + i*periodSize
		start := int(bytecodec.Uint16(packet, at))
		end := int(bytecodec.Uint16(packet, at+2))
		// a wire period may wrap past midnight but never leave the day or be empty
		if start >= MinutesPerDay || end <= 0 || end > MinutesPerDay || start == end {
			return RecordingSettings{}, fmt.Errorf("%w: period %d raw minutes %d-%d", ErrInvalidPeriod, i, start, end)
		}
		wire := TimePeriod{StartMinute: start, EndMinute: end}
		if start > end {
			// wrapped: unfold so the length survives the shift
			wire.EndMinute += MinutesPerDay
		}
		s.Periods[i] = shiftPeriod(wire, offset)
		if err := s.Periods[i].Validate(); err != nil {
			return RecordingSettings{}, fmt.Errorf("period %d: %w", i, err)
		}
	}

	if layout.covers(offBatteryCheck, 1) {
		s.LowVoltageCutoffEnabled = packet[offLowVoltageCutoff] != 0
		s.BatteryLevelCheckEnabled = packet[offBatteryCheck] == 0
	}
	if layout.covers(offDutyCycle, 1) {
		s.DutyCycleEnabled = packet[offDutyCycle] == 0
	}

	if layout.covers(offAmplitudeThreshold, 2) {
		zone := s.zone()
		if t, ok := bytecodec.Timestamp(packet, offFirstDate); ok {
			s.FirstRecordingDate = nearestDay(t.In(zone), 12*time.Hour)
		}
		if t, ok := bytecodec.Timestamp(packet, offLastDate); ok {
			s.LastRecordingDate = nearestDay(t.In(zone), -12*time.Hour)
		}
		s.Filter = filterFromCodes(bytecodec.Uint16(packet, offLowFilter), bytecodec.Uint16(packet, offHighFilter))
		if err := s.Filter.Validate(); err != nil {
			return RecordingSettings{}, err
		}
		s.AmplitudeThreshold = bytecodec.Uint16(packet, offAmplitudeThreshold)
	}

	return s, nil
}

// nearestDay snaps a start or end of day instant onto its calendar date.
// Shifting by half a day absorbs daylight saving changes between encoding
// and decoding.
func nearestDay(t time.Time, shift time.Duration) civil.Date {
	return civil.DateOf(t.Add(shift))
}

func fixedZone(offsetMinutes int) *time.Location {
	if offsetMinutes == 0 {
		return time.UTC
	}
	sign := '+'
	abs := offsetMinutes
	if abs < 0 {
		sign = '-'
		abs = -abs
	}
	return time.FixedZone(fmt.Sprintf("UTC%c%02d:%02d", sign, abs/60, abs%60), offsetMinutes*60)
}

// Normalize returns the settings a device would report after being configured
// with s: fields the target layout cannot carry take the values Decode gives
// them.
func (c Codec) Normalize(s RecordingSettings) RecordingSettings {
	l := s.Layout()
	out := s
	out.Periods = s.Schedule()
	out.Filter = s.Filter.normalized()

	if carriedOffset(c.offsetMinutes(s, c.now()), l) == 0 {
		out.LocalTime = false
		out.Location = nil
	}
	if !l.covers(offBatteryCheck, 1) {
		out.LowVoltageCutoffEnabled = false
		out.BatteryLevelCheckEnabled = false
	}
	if !l.covers(offAmplitudeThreshold, 2) {
		out.DutyCycleEnabled = true
		out.FirstRecordingDate = civil.Date{}
		out.LastRecordingDate = civil.Date{}
		out.Filter = Filter{}
		out.AmplitudeThreshold = 0
	}
	return out
}

// carriedOffset is the part of a zone offset a layout can store. Firmware
// without a minutes field works in whole hours.
func carriedOffset(offset int, l Layout) int {
	carried := 0
	if l.covers(offTimezoneHours, 1) {
		carried += offset / 60 * 60
	}
	if l.covers(offTimezoneMinutes, 1) {
		carried += offset % 60
	}
	return carried
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
