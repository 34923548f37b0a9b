package audiomoth

import "errors"

var (
	// ErrTruncatedPacket is returned when a packet is shorter than the layout
	// implied by its firmware version
	ErrTruncatedPacket = errors.New("truncated packet")

	// ErrTooManyPeriods is returned for schedules longer than MaxPeriods
	ErrTooManyPeriods = errors.New("too many recording periods")

	ErrInvalidPeriod            = errors.New("invalid recording period")
	ErrInvalidFilter            = errors.New("invalid filter")
	ErrInvalidDuration          = errors.New("invalid record/sleep duration")
	ErrInvalidFirmwareVersion   = errors.New("invalid firmware version")
	ErrInvalidSampleRateDivider = errors.New("invalid sample rate divider")
)
