package bytecodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint16LittleEndian(t *testing.T) {
	buf := []byte{0x00, 0x34, 0x12, 0xFF, 0xFF}

	assert.Equal(t, uint16(0x1234), Uint16(buf, 1))
	assert.Equal(t, uint16(0xFFFF), Uint16(buf, 3), "high bytes must not sign-extend")

	out := make([]byte, 4)
	PutUint16(out, 2, 0xBEEF)
	assert.Equal(t, []byte{0x00, 0x00, 0xEF, 0xBE}, out)
}

func TestUint32LittleEndian(t *testing.T) {
	buf := make([]byte, 6)
	PutUint32(buf, 1, 384000)

	assert.Equal(t, []byte{0x00, 0x00, 0xDC, 0x05, 0x00, 0x00}, buf)
	assert.Equal(t, uint32(384000), Uint32(buf, 1))
}

func TestTimestampRoundTrip(t *testing.T) {
	when := time.Date(2026, time.March, 14, 15, 9, 26, 535, time.UTC)
	buf := make([]byte, 5)
	PutTimestamp(buf, 1, when)

	got, ok := Timestamp(buf, 1)
	require.True(t, ok)
	assert.Equal(t, when.Truncate(time.Second), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestTimestampZeroIsNoDate(t *testing.T) {
	got, ok := Timestamp([]byte{0xAA, 0, 0, 0, 0}, 1)

	assert.False(t, ok)
	assert.True(t, got.IsZero(), "zero bytes must not decode to the epoch")
}

func TestOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() { Uint32(make([]byte, 3), 0) })
	assert.Panics(t, func() { PutUint16(make([]byte, 2), 1, 1) })
}

func TestHexDump(t *testing.T) {
	assert.Equal(t, "06 0A FF 00", HexDump([]byte{0x06, 0x0A, 0xFF, 0x00}))
	assert.Equal(t, "", HexDump(nil))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"dump format", "06 0A FF 00", []byte{0x06, 0x0A, 0xFF, 0x00}},
		{"compact lowercase", "060aff00", []byte{0x06, 0x0A, 0xFF, 0x00}},
		{"prefixed", "0x0102", []byte{0x01, 0x02}},
		{"multiline", "01 02\n03\t04\n", []byte{0x01, 0x02, 0x03, 0x04}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseHex("0G")
	assert.Error(t, err)
}
