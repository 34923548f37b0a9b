package audiomoth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDeviceInfo(t *testing.T) {
	packet := make([]byte, 64)
	packet[0] = 0x05
	copy(packet[1:], []byte{0xC0, 0x08, 0xCD, 0x69})
	copy(packet[5:], []byte{0x10, 0x32, 0x54, 0x76, 0x98, 0xBA, 0xDC, 0xFE})
	packet[13] = 8
	copy(packet[14:], []byte{1, 4, 4})

	info, err := DecodeDeviceInfo(packet)
	require.NoError(t, err)

	assert.Equal(t, "FEDCBA9876543210", info.DeviceID)
	assert.Equal(t, "1.4.4", info.FirmwareVersion)
	assert.Equal(t, CurrentFirmware, info.Version)
	assert.Equal(t, "4.3V", info.Battery)
	assert.Equal(t, uint8(8), info.BatteryLevel)
	assert.True(t, info.HasDate())
	assert.Equal(t, time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC), info.Date)
}

func TestDecodeDeviceInfoWithoutClock(t *testing.T) {
	packet := make([]byte, DeviceInfoLength)
	copy(packet[14:], []byte{1, 2, 0})

	info, err := DecodeDeviceInfo(packet)
	require.NoError(t, err)
	assert.False(t, info.HasDate())
	assert.Equal(t, "0000000000000000", info.DeviceID)
	assert.Equal(t, "< 3.6V", info.Battery)
	assert.Equal(t, FirmwareVersion{1, 2, 0}, info.Version)
}

func TestDecodeDeviceInfoTruncated(t *testing.T) {
	_, err := DecodeDeviceInfo(make([]byte, DeviceInfoLength-1))
	assert.ErrorIs(t, err, ErrTruncatedPacket)
}

func TestBatteryState(t *testing.T) {
	tests := map[uint8]string{
		0:  "< 3.6V",
		1:  "3.6V",
		5:  "4.0V",
		8:  "4.3V",
		14: "4.9V",
		15: "<4.9V",
	}
	for level, want := range tests {
		assert.Equal(t, want, BatteryState(level), "level %d", level)
	}
}

func TestDeviceIDFromBytes(t *testing.T) {
	assert.Equal(t, "0807060504030201", DeviceIDFromBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, "FF00", DeviceIDFromBytes([]byte{0x00, 0xFF}))
}
