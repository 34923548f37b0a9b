package protocol

import (
	"time"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
)

// ReportSize is the length of every USB-HID report exchanged with the device
const ReportSize = 64

// BuildPacket prefixes payload with op
func BuildPacket(op Opcode, payload []byte) []byte {
	packet := make([]byte, 1+len(payload))
	packet[0] = byte(op)
	copy(packet[1:], payload)
	return packet
}

// Request builds a request with no payload. All GET_*, QUERY_BOOTLOADER and
// SWITCH_TO_BOOTLOADER requests take this form.
func Request(op Opcode) []byte {
	return BuildPacket(op, nil)
}

// SetTimeRequest sets the device clock to t
func SetTimeRequest(t time.Time) []byte {
	payload := make([]byte, 4)
	bytecodec.PutTimestamp(payload, 0, t)
	return BuildPacket(SetTime, payload)
}

// SetAppPacketRequest encodes s for the firmware it names
func SetAppPacketRequest(c audiomoth.Codec, s audiomoth.RecordingSettings) ([]byte, error) {
	payload, err := c.Encode(s)
	if err != nil {
		return nil, err
	}
	return BuildPacket(SetAppPacket, payload), nil
}
