package audiomoth

import (
	"fmt"
	"strings"
)

// FilterKind selects which side of the band the device filters
type FilterKind int

const (
	FilterDisabled FilterKind = iota
	FilterLow
	FilterHigh
	FilterBand
)

var filterKindNames = map[FilterKind]string{
	FilterDisabled: "none",
	FilterLow:      "low",
	FilterHigh:     "high",
	FilterBand:     "band",
}

// String returns the settings file name of the kind
func (k FilterKind) String() string {
	if name, ok := filterKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// ParseFilterKind accepts none, low, high and band (case-insensitive).
// The empty string means none.
func ParseFilterKind(s string) (FilterKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return FilterDisabled, nil
	}
	for kind, n := range filterKindNames {
		if n == name {
			return kind, nil
		}
	}
	return FilterDisabled, fmt.Errorf("%w: unknown filter type %q", ErrInvalidFilter, s)
}

// MarshalText encodes the kind by name
func (k FilterKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names ParseFilterKind accepts
func (k *FilterKind) UnmarshalText(text []byte) error {
	kind, err := ParseFilterKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

const (
	// filterUnbounded marks the open side of a low or high pass filter
	filterUnbounded = 0xFFFF
	filterStepHz    = 100

	// full band reported when both sides are unbounded
	fullBandLowHz  = 0
	fullBandHighHz = 24000
)

// Filter is the device's band filter. A low pass filter only uses HighHz and a
// high pass filter only uses LowHz.
type Filter struct {
	Kind   FilterKind `json:"kind" yaml:"kind"`
	LowHz  int        `json:"lowHz,omitempty" yaml:"lowHz,omitempty"`
	HighHz int        `json:"highHz,omitempty" yaml:"highHz,omitempty"`
}

// LowPass passes frequencies below cutoffHz
func LowPass(cutoffHz int) Filter {
	return Filter{Kind: FilterLow, HighHz: cutoffHz}
}

// HighPass passes frequencies above cutoffHz
func HighPass(cutoffHz int) Filter {
	return Filter{Kind: FilterHigh, LowHz: cutoffHz}
}

// BandPass passes frequencies between lowHz and highHz
func BandPass(lowHz, highHz int) Filter {
	return Filter{Kind: FilterBand, LowHz: lowHz, HighHz: highHz}
}

// Enabled reports whether the filter reaches the device
func (f Filter) Enabled() bool {
	return f.Kind != FilterDisabled
}

// String describes the filter for display
func (f Filter) String() string {
	switch f.Kind {
	case FilterLow:
		return fmt.Sprintf("low-pass %d Hz", f.HighHz)
	case FilterHigh:
		return fmt.Sprintf("high-pass %d Hz", f.LowHz)
	case FilterBand:
		return fmt.Sprintf("band-pass %d-%d Hz", f.LowHz, f.HighHz)
	}
	return "disabled"
}

// Validate checks that the cutoffs fit the 100 Hz wire encoding
func (f Filter) Validate() error {
	switch f.Kind {
	case FilterDisabled:
		return nil
	case FilterLow:
		return validateCutoff(f.HighHz, false)
	case FilterHigh:
		return validateCutoff(f.LowHz, false)
	case FilterBand:
		if err := validateCutoff(f.LowHz, true); err != nil {
			return err
		}
		if err := validateCutoff(f.HighHz, false); err != nil {
			return err
		}
		if f.LowHz >= f.HighHz {
			return fmt.Errorf("%w: band %d-%d Hz is empty", ErrInvalidFilter, f.LowHz, f.HighHz)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown kind %d", ErrInvalidFilter, int(f.Kind))
}

func validateCutoff(hz int, allowZero bool) error {
	if hz < 0 || (hz == 0 && !allowZero) {
		return fmt.Errorf("%w: cutoff %d Hz", ErrInvalidFilter, hz)
	}
	if hz%filterStepHz != 0 {
		return fmt.Errorf("%w: cutoff %d Hz is not a multiple of %d Hz", ErrInvalidFilter, hz, filterStepHz)
	}
	if hz/filterStepHz >= filterUnbounded {
		return fmt.Errorf("%w: cutoff %d Hz out of range", ErrInvalidFilter, hz)
	}
	return nil
}

// normalized drops the fields a filter kind does not carry on the wire
func (f Filter) normalized() Filter {
	switch f.Kind {
	case FilterLow:
		return LowPass(f.HighHz)
	case FilterHigh:
		return HighPass(f.LowHz)
	case FilterBand:
		return f
	}
	return Filter{}
}

// codes returns the (low, high) pair written to the packet in 100 Hz units
func (f Filter) codes() (uint16, uint16) {
	switch f.Kind {
	case FilterLow:
		return filterUnbounded, uint16(f.HighHz / filterStepHz)
	case FilterHigh:
		return uint16(f.LowHz / filterStepHz), filterUnbounded
	case FilterBand:
		return uint16(f.LowHz / filterStepHz), uint16(f.HighHz / filterStepHz)
	}
	return 0, 0
}

func filterFromCodes(low, high uint16) Filter {
	switch {
	case low == filterUnbounded && high == filterUnbounded:
		return BandPass(fullBandLowHz, fullBandHighHz)
	case low == filterUnbounded:
		return LowPass(int(high) * filterStepHz)
	case high == filterUnbounded:
		return HighPass(int(low) * filterStepHz)
	case low == 0 && high == 0:
		return Filter{}
	}
	return BandPass(int(low)*filterStepHz, int(high)*filterStepHz)
}
