package audiomoth

import (
	"fmt"
	"strconv"
	"strings"
)

// FirmwareVersion is the major.minor.patch triple reported by the device
type FirmwareVersion struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// CurrentFirmware is the first release using the full sample rate table and
// the 58-byte settings packet
var CurrentFirmware = FirmwareVersion{1, 4, 4}

// ParseFirmwareVersion parses "1.4.4"
func ParseFirmwareVersion(s string) (FirmwareVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return FirmwareVersion{}, fmt.Errorf("%w: %q", ErrInvalidFirmwareVersion, s)
	}

	var fields [3]uint8
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return FirmwareVersion{}, fmt.Errorf("%w: %q", ErrInvalidFirmwareVersion, s)
		}
		fields[i] = uint8(n)
	}
	return FirmwareVersion{fields[0], fields[1], fields[2]}, nil
}

// String formats the version as major.minor.patch
func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1
func (v FirmwareVersion) Compare(o FirmwareVersion) int {
	switch {
	case v.Major != o.Major:
		return cmp(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp(v.Minor, o.Minor)
	default:
		return cmp(v.Patch, o.Patch)
	}
}

func cmp(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less reports whether v predates o
func (v FirmwareVersion) Less(o FirmwareVersion) bool {
	return v.Compare(o) < 0
}

// IsZero reports whether no version was given
func (v FirmwareVersion) IsZero() bool {
	return v == FirmwareVersion{}
}

// OrCurrent substitutes CurrentFirmware for the zero value, so settings built
// without a device reply target current firmware
func (v FirmwareVersion) OrCurrent() FirmwareVersion {
	if v.IsZero() {
		return CurrentFirmware
	}
	return v
}

// Legacy reports whether the firmware uses the reduced 128 kHz sample rate table
func (v FirmwareVersion) Legacy() bool {
	return v.Less(CurrentFirmware)
}

// MarshalText encodes the version as major.minor.patch
func (v FirmwareVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a major.minor.patch version
func (v *FirmwareVersion) UnmarshalText(text []byte) error {
	parsed, err := ParseFirmwareVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Layout describes the settings packet accepted by one firmware generation.
// Older layouts are prefixes of the current one.
type Layout struct {
	Length int
}

// Packet lengths per firmware generation
const (
	LengthV100   = 39 // period table only
	LengthV120   = 40 // + timezone hours
	LengthV121   = 42 // + low voltage cutoff, battery level check
	LengthV122   = 43 // + timezone minutes
	PacketLength = 58
)

// LayoutFor selects the settings packet layout for a firmware version
func LayoutFor(v FirmwareVersion) Layout {
	switch {
	case v.Less(FirmwareVersion{1, 2, 0}):
		return Layout{LengthV100}
	case v.Less(FirmwareVersion{1, 2, 1}):
		return Layout{LengthV120}
	case v.Less(FirmwareVersion{1, 2, 2}):
		return Layout{LengthV121}
	case v.Less(FirmwareVersion{1, 4, 0}):
		return Layout{LengthV122}
	}
	return Layout{PacketLength}
}

// covers reports whether a field at offset with the given width is part of the layout
func (l Layout) covers(offset, width int) bool {
	return offset+width <= l.Length
}
