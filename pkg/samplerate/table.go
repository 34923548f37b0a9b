// Package samplerate maps the nominal sample rates offered to users onto the
// ADC configuration tuples the AudioMoth firmware expects.
//
// The pairs of raw sample rate and divider are taken from the device
// documentation as-is. They are never derived from the nominal rate.
package samplerate

import (
	"fmt"
	"sort"
)

// Config is one row of the sample rate table
type Config struct {
	// TrueSampleRate is the nominal rate in kHz (informational only)
	TrueSampleRate    int
	ClockDivider      uint8
	AcquisitionCycles uint8
	OversampleRate    uint8
	// RawSampleRate is the frequency in Hz fed to the device clock
	RawSampleRate     uint32
	SampleRateDivider uint8
	StartCurrentMA    float64
	RecordCurrentMA   float64
}

// BytesPerSecond returns the size of one second of 16-bit audio recorded
// with this configuration
func (c Config) BytesPerSecond() int64 {
	if c.SampleRateDivider == 0 {
		return 0
	}
	return int64(c.RawSampleRate/uint32(c.SampleRateDivider)) * 2
}

// Hz returns the nominal rate in Hz
func (c Config) Hz() int {
	return c.TrueSampleRate * 1000
}

// current firmware (1.4.4 and later), keyed by kHz
var current = map[int]Config{
	8:   {8, 4, 16, 1, 384000, 48, 11.0, 10.0},
	16:  {16, 4, 16, 1, 384000, 24, 11.2, 10.9},
	32:  {32, 4, 16, 1, 384000, 12, 11.5, 12.3},
	48:  {48, 4, 16, 1, 384000, 8, 11.8, 14.0},
	96:  {96, 4, 16, 1, 384000, 4, 12.7, 17.4},
	192: {192, 4, 16, 1, 384000, 2, 14.5, 25.6},
	250: {250, 4, 16, 1, 250000, 1, 15.8, 29.5},
	384: {384, 4, 16, 1, 384000, 1, 18.2, 41.6},
}

// firmware older than 1.4.4 runs the ADC from a 128 kHz clock
var legacy = map[int]Config{
	8:  {8, 4, 16, 1, 128000, 16, 11.0, 10.0},
	16: {16, 4, 16, 1, 128000, 8, 11.2, 10.9},
	32: {32, 4, 16, 1, 128000, 4, 11.5, 12.3},
}

func table(isLegacy bool) map[int]Config {
	if isLegacy {
		return legacy
	}
	return current
}

// Lookup returns the configuration for a nominal rate in Hz.
// Only whole kHz values listed in the table are accepted.
func Lookup(nominalHz int, isLegacy bool) (Config, error) {
	if nominalHz <= 0 || nominalHz%1000 != 0 {
		return Config{}, fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, nominalHz)
	}
	cfg, ok := table(isLegacy)[nominalHz/1000]
	if !ok {
		if isLegacy {
			return Config{}, fmt.Errorf("%w: %d Hz on legacy firmware", ErrUnsupportedSampleRate, nominalHz)
		}
		return Config{}, fmt.Errorf("%w: %d Hz", ErrUnsupportedSampleRate, nominalHz)
	}
	return cfg, nil
}

// Match finds the row whose raw rate and divider equal the values read back
// from a device packet
func Match(rawSampleRate uint32, divider uint8, isLegacy bool) (Config, error) {
	for _, cfg := range table(isLegacy) {
		if cfg.RawSampleRate == rawSampleRate && cfg.SampleRateDivider == divider {
			return cfg, nil
		}
	}
	return Config{}, fmt.Errorf("%w: raw %d Hz / %d", ErrUnsupportedSampleRate, rawSampleRate, divider)
}

// Rates lists the supported nominal rates in Hz, ascending
func Rates(isLegacy bool) []int {
	t := table(isLegacy)
	rates := make([]int, 0, len(t))
	for khz := range t {
		rates = append(rates, khz*1000)
	}
	sort.Ints(rates)
	return rates
}
