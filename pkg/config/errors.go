package config

import "errors"

var (
	// ErrInvalidSettingsFile is returned when a settings file parses but holds
	// values a device cannot take
	ErrInvalidSettingsFile = errors.New("invalid settings file")
)
