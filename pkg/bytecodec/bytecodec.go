// Package bytecodec reads and writes the little-endian fields carried in
// AudioMoth USB packets.
//
// Offsets are trusted: every function indexes the buffer directly, so an
// offset outside the buffer panics like any other slice access. Callers size
// their buffers from the packet layout before calling in.
package bytecodec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Uint16 reads an unsigned 16-bit little-endian value at offset
func Uint16(buf []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(buf[offset : offset+2])
}

// PutUint16 writes an unsigned 16-bit little-endian value at offset
func PutUint16(buf []byte, offset int, value uint16) {
	binary.LittleEndian.PutUint16(buf[offset:offset+2], value)
}

// Uint32 reads an unsigned 32-bit little-endian value at offset
func Uint32(buf []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(buf[offset : offset+4])
}

// PutUint32 writes an unsigned 32-bit little-endian value at offset
func PutUint32(buf []byte, offset int, value uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], value)
}

// PutTimestamp writes t as 32-bit little-endian UNIX seconds.
// Sub-second precision is dropped.
func PutTimestamp(buf []byte, offset int, t time.Time) {
	PutUint32(buf, offset, uint32(t.Unix()))
}

// Timestamp reads 32-bit little-endian UNIX seconds at offset.
// The second return value is false when all four bytes are zero, which the
// firmware uses for "no date" rather than the 1970 epoch.
func Timestamp(buf []byte, offset int) (time.Time, bool) {
	seconds := Uint32(buf, offset)
	if seconds == 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(seconds), 0).UTC(), true
}

// HexDump renders data as space separated uppercase byte pairs ("0A FF 10")
func HexDump(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// ParseHex is the inverse of HexDump. It also accepts unseparated hex and
// an optional 0x prefix.
func ParseHex(s string) ([]byte, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	cleaned = strings.Join(strings.Fields(cleaned), "")
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}
