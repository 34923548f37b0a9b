package session

import "errors"

var (
	// ErrVerifyMismatch is returned when the settings echoed by the device
	// differ from the settings sent
	ErrVerifyMismatch = errors.New("device settings do not match")
	ErrEmptyPacket    = errors.New("empty packet")
	ErrShortRequest   = errors.New("request too short")
	ErrInvalidDevice  = errors.New("invalid emulated device")
)
