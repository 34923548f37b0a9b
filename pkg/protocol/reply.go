package protocol

import (
	"bytes"
	"fmt"
	"time"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
)

const (
	payloadOffset = 1
	// DescriptionLength is the size of the firmware description field
	DescriptionLength = 32
)

// Reply is a decoded device reply. Only the fields belonging to Opcode are set.
type Reply struct {
	Opcode Opcode `json:"opcode" yaml:"opcode"`

	// GET_TIME, SET_TIME
	Time time.Time `json:"time,omitempty" yaml:"time,omitempty"`
	// GET_UID
	DeviceID string `json:"deviceId,omitempty" yaml:"deviceId,omitempty"`
	// GET_BATTERY
	Battery      string `json:"battery,omitempty" yaml:"battery,omitempty"`
	BatteryLevel uint8  `json:"batteryLevel,omitempty" yaml:"batteryLevel,omitempty"`
	// GET_APP_PACKET
	Info *audiomoth.DeviceInfo `json:"info,omitempty" yaml:"info,omitempty"`
	// SET_APP_PACKET echo
	Settings *audiomoth.RecordingSettings `json:"-" yaml:"-"`
	// GET_FIRMWARE_VERSION
	Firmware audiomoth.FirmwareVersion `json:"firmware,omitempty" yaml:"firmware,omitempty"`
	// GET_FIRMWARE_DESCRIPTION
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// QUERY_BOOTLOADER, SWITCH_TO_BOOTLOADER
	Bootloader bool `json:"bootloader,omitempty" yaml:"bootloader,omitempty"`
}

// Decoder decodes replies from one device
type Decoder struct {
	Codec audiomoth.Codec
	// Firmware selects the settings layout of SET_APP_PACKET echoes
	Firmware audiomoth.FirmwareVersion
}

// DecodeReply decodes a reply using the current firmware layout
func DecodeReply(op Opcode, packet []byte) (Reply, error) {
	return Decoder{}.Decode(op, packet)
}

// Decode checks that packet answers op and extracts its payload
func (d Decoder) Decode(op Opcode, packet []byte) (Reply, error) {
	if !op.Valid() {
		return Reply{}, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	if len(packet) == 0 {
		return Reply{}, fmt.Errorf("%w: empty %s reply", ErrShortReply, op)
	}
	if Opcode(packet[0]) != op {
		return Reply{}, fmt.Errorf("%w: sent %s, got %s", ErrOpcodeMismatch, op, Opcode(packet[0]))
	}

	r := Reply{Opcode: op}
	switch op {
	case GetTime, SetTime:
		if err := need(op, packet, 4); err != nil {
			return Reply{}, err
		}
		r.Time, _ = bytecodec.Timestamp(packet, payloadOffset)

	case GetUID:
		if err := need(op, packet, 8); err != nil {
			return Reply{}, err
		}
		r.DeviceID = audiomoth.DeviceIDFromBytes(packet[payloadOffset : payloadOffset+8])

	case GetBattery:
		if err := need(op, packet, 1); err != nil {
			return Reply{}, err
		}
		r.BatteryLevel = packet[payloadOffset]
		r.Battery = audiomoth.BatteryState(r.BatteryLevel)

	case GetAppPacket:
		info, err := audiomoth.DecodeDeviceInfo(packet)
		if err != nil {
			return Reply{}, err
		}
		r.Info = &info

	case SetAppPacket:
		settings, err := d.Codec.Decode(packet[payloadOffset:], d.Firmware)
		if err != nil {
			return Reply{}, fmt.Errorf("%s echo: %w", op, err)
		}
		r.Settings = &settings

	case GetFirmwareVersion:
		if err := need(op, packet, 3); err != nil {
			return Reply{}, err
		}
		r.Firmware = audiomoth.FirmwareVersion{
			Major: packet[payloadOffset],
			Minor: packet[payloadOffset+1],
			Patch: packet[payloadOffset+2],
		}

	case GetFirmwareDescription:
		field := packet[payloadOffset:]
		if len(field) > DescriptionLength {
			field = field[:DescriptionLength]
		}
		if i := bytes.IndexByte(field, 0); i >= 0 {
			field = field[:i]
		}
		r.Description = string(field)

	case QueryBootloader, SwitchToBootloader:
		if err := need(op, packet, 1); err != nil {
			return Reply{}, err
		}
		r.Bootloader = packet[payloadOffset] == 0x01
	}
	return r, nil
}

func need(op Opcode, packet []byte, payload int) error {
	if len(packet) < payloadOffset+payload {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortReply, op, payloadOffset+payload, len(packet))
	}
	return nil
}
