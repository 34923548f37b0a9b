package samplerate

import "errors"

var (
	// ErrUnsupportedSampleRate is returned when a nominal rate has no entry in
	// the table for the requested firmware generation
	ErrUnsupportedSampleRate = errors.New("unsupported sample rate")
)
