package audiomoth

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/herlein/gomoth/pkg/bytecodec"
)

// Device identification block offsets, after the opcode echo at byte 0
const (
	offInfoTime     = 1  // uint32 UNIX seconds
	offInfoID       = 5  // 8 bytes, least significant first
	offInfoBattery  = 13 // uint8 level
	offInfoFirmware = 14 // major, minor, patch

	deviceIDLength = 8
	// DeviceInfoLength is the shortest reply DecodeDeviceInfo accepts
	DeviceInfoLength = 17
)

// DeviceInfo identifies an AudioMoth. It is only ever read from the device.
type DeviceInfo struct {
	DeviceID        string          `json:"deviceId" yaml:"deviceId"`
	FirmwareVersion string          `json:"firmwareVersion" yaml:"firmwareVersion"`
	Version         FirmwareVersion `json:"-" yaml:"-"`
	Battery         string          `json:"battery" yaml:"battery"`
	BatteryLevel    uint8           `json:"batteryLevel" yaml:"batteryLevel"`
	// Date is the device clock; zero when the device has not been set
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`
}

// HasDate reports whether the device clock has been set
func (d DeviceInfo) HasDate() bool {
	return !d.Date.IsZero()
}

// DecodeDeviceInfo parses a GET_APP_PACKET reply, opcode echo included
func DecodeDeviceInfo(packet []byte) (DeviceInfo, error) {
	if len(packet) < DeviceInfoLength {
		return DeviceInfo{}, fmt.Errorf("%w: device info needs %d bytes, got %d",
			ErrTruncatedPacket, DeviceInfoLength, len(packet))
	}

	version := FirmwareVersion{
		Major: packet[offInfoFirmware],
		Minor: packet[offInfoFirmware+1],
		Patch: packet[offInfoFirmware+2],
	}
	info := DeviceInfo{
		DeviceID:        DeviceIDFromBytes(packet[offInfoID : offInfoID+deviceIDLength]),
		FirmwareVersion: version.String(),
		Version:         version,
		BatteryLevel:    packet[offInfoBattery],
		Battery:         BatteryState(packet[offInfoBattery]),
	}
	if t, ok := bytecodec.Timestamp(packet, offInfoTime); ok {
		info.Date = t
	}
	return info, nil
}

// DeviceIDFromBytes renders a device ID as sent by the firmware (least
// significant byte first) in display order
func DeviceIDFromBytes(raw []byte) string {
	reversed := make([]byte, len(raw))
	for i, b := range raw {
		reversed[len(raw)-1-i] = b
	}
	return strings.ToUpper(hex.EncodeToString(reversed))
}

// BatteryState formats the battery level byte. Levels 0 and 15 are the ends
// of the measurable range.
func BatteryState(level uint8) string {
	switch level {
	case 0:
		return "< 3.6V"
	case 15:
		return "<4.9V"
	}
	return fmt.Sprintf("%.1fV", 3.5+float64(level)/10)
}
