// Package protocol builds the USB-HID requests understood by AudioMoth
// firmware and decodes the replies.
//
// Every packet starts with a one byte opcode. Requests carry their payload
// after it; replies echo the opcode and carry their payload after it.
package protocol

import (
	"fmt"
	"strconv"
)

// Opcode identifies a request and the reply answering it
type Opcode byte

const (
	GetTime                Opcode = 0x01
	SetTime                Opcode = 0x02
	GetUID                 Opcode = 0x03
	GetBattery             Opcode = 0x04
	GetAppPacket           Opcode = 0x05
	SetAppPacket           Opcode = 0x06
	GetFirmwareVersion     Opcode = 0x07
	GetFirmwareDescription Opcode = 0x08
	QueryBootloader        Opcode = 0x09
	SwitchToBootloader     Opcode = 0x0A
)

var opcodeNames = map[Opcode]string{
	GetTime:                "GET_TIME",
	SetTime:                "SET_TIME",
	GetUID:                 "GET_UID",
	GetBattery:             "GET_BATTERY",
	GetAppPacket:           "GET_APP_PACKET",
	SetAppPacket:           "SET_APP_PACKET",
	GetFirmwareVersion:     "GET_FIRMWARE_VERSION",
	GetFirmwareDescription: "GET_FIRMWARE_DESCRIPTION",
	QueryBootloader:        "QUERY_BOOTLOADER",
	SwitchToBootloader:     "SWITCH_TO_BOOTLOADER",
}

// String returns the opcode's protocol name
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(op))
}

// Valid reports whether the firmware knows the opcode
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// ParseOpcode accepts the opcode name ("GET_UID") or its number ("3", "0x03")
func ParseOpcode(s string) (Opcode, error) {
	for op, name := range opcodeNames {
		if name == s {
			return op, nil
		}
	}
	if n, err := strconv.ParseUint(s, 0, 8); err == nil && Opcode(n).Valid() {
		return Opcode(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, s)
}
