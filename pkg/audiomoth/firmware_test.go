package audiomoth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFirmwareVersion(t *testing.T) {
	v, err := ParseFirmwareVersion("1.4.4")
	require.NoError(t, err)
	assert.Equal(t, CurrentFirmware, v)
	assert.Equal(t, "1.4.4", v.String())

	v, err = ParseFirmwareVersion(" 255.0.12 ")
	require.NoError(t, err)
	assert.Equal(t, FirmwareVersion{255, 0, 12}, v)

	for _, bad := range []string{"", "1.4", "1.4.4.1", "1.x.4", "256.0.0", "-1.0.0"} {
		_, err := ParseFirmwareVersion(bad)
		assert.ErrorIs(t, err, ErrInvalidFirmwareVersion, bad)
	}
}

func TestFirmwareCompare(t *testing.T) {
	assert.Equal(t, 0, CurrentFirmware.Compare(FirmwareVersion{1, 4, 4}))
	assert.Equal(t, -1, FirmwareVersion{1, 4, 3}.Compare(CurrentFirmware))
	assert.Equal(t, 1, FirmwareVersion{2, 0, 0}.Compare(CurrentFirmware))
	assert.Equal(t, -1, FirmwareVersion{1, 3, 9}.Compare(FirmwareVersion{1, 4, 0}))

	assert.True(t, FirmwareVersion{1, 4, 3}.Legacy())
	assert.True(t, FirmwareVersion{1, 0, 0}.Legacy())
	assert.False(t, CurrentFirmware.Legacy())
	assert.False(t, FirmwareVersion{1, 5, 0}.Legacy())

	assert.Equal(t, CurrentFirmware, FirmwareVersion{}.OrCurrent())
	assert.Equal(t, FirmwareVersion{1, 2, 0}, FirmwareVersion{1, 2, 0}.OrCurrent())
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		version string
		want    int
	}{
		{"0.0.0", 39},
		{"1.1.9", 39},
		{"1.2.0", 40},
		{"1.2.1", 42},
		{"1.2.2", 43},
		{"1.3.5", 43},
		{"1.4.0", 58},
		{"1.4.4", 58},
		{"1.8.0", 58},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v, err := ParseFirmwareVersion(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, LayoutFor(v).Length)
		})
	}
}

func TestFirmwareVersionText(t *testing.T) {
	var v FirmwareVersion
	require.NoError(t, v.UnmarshalText([]byte("1.2.2")))
	assert.Equal(t, FirmwareVersion{1, 2, 2}, v)

	text, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.2.2", string(text))

	assert.Error(t, v.UnmarshalText([]byte("one")))
}
