package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/protocol"
)

// EmulatorConfig describes an emulated device
type EmulatorConfig struct {
	// DeviceID in display order, 16 hex digits
	DeviceID     string
	Firmware     audiomoth.FirmwareVersion
	BatteryLevel uint8
	Description  string
	Bootloader   bool
	// Now is the host clock (time.Now when nil)
	Now func() time.Time
}

// DefaultEmulatorConfig is a freshly unpacked device on current firmware
func DefaultEmulatorConfig() EmulatorConfig {
	return EmulatorConfig{
		DeviceID:     "24E144085F256163",
		Firmware:     audiomoth.CurrentFirmware,
		BatteryLevel: 10,
		Description:  "AudioMoth-Firmware-Basic",
		Bootloader:   true,
	}
}

// Emulator is an in-memory AudioMoth implementing Transport. It answers every
// request with a full report, like the USB-HID firmware. Safe for concurrent use.
type Emulator struct {
	mu       sync.Mutex
	cfg      EmulatorConfig
	id       []byte // wire order
	now      func() time.Time
	clockSet bool
	offset   time.Duration
	settings []byte
	requests int
}

// NewEmulator checks cfg and returns a device with an unset clock
func NewEmulator(cfg EmulatorConfig) (*Emulator, error) {
	display, err := bytecodec.ParseHex(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: device id: %v", ErrInvalidDevice, err)
	}
	if len(display) != 8 {
		return nil, fmt.Errorf("%w: device id must be 8 bytes, got %d", ErrInvalidDevice, len(display))
	}
	if cfg.BatteryLevel > 15 {
		return nil, fmt.Errorf("%w: battery level %d", ErrInvalidDevice, cfg.BatteryLevel)
	}

	id := make([]byte, len(display))
	for i, b := range display {
		id[len(display)-1-i] = b
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cfg.Firmware = cfg.Firmware.OrCurrent()
	return &Emulator{cfg: cfg, id: id, now: now}, nil
}

// String describes the emulated device
func (e *Emulator) String() string {
	return fmt.Sprintf("emulated AudioMoth %s (firmware %s)", e.cfg.DeviceID, e.cfg.Firmware)
}

// clock is the device time, zero until SET_TIME. Callers hold e.mu.
func (e *Emulator) clock() time.Time {
	if !e.clockSet {
		return time.Time{}
	}
	return e.now().Add(e.offset)
}

func putClock(buf []byte, offset int, t time.Time) {
	if !t.IsZero() {
		bytecodec.PutTimestamp(buf, offset, t)
	}
}

// Exchange answers one request
func (e *Emulator) Exchange(ctx context.Context, packet []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(packet) == 0 {
		return nil, ErrEmptyPacket
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests++

	op := protocol.Opcode(packet[0])
	reply := make([]byte, protocol.ReportSize)
	reply[0] = packet[0]

	switch op {
	case protocol.GetTime:
		putClock(reply, 1, e.clock())

	case protocol.SetTime:
		if len(packet) < 5 {
			return nil, fmt.Errorf("%w: %s needs 4 bytes", ErrShortRequest, op)
		}
		t, ok := bytecodec.Timestamp(packet, 1)
		e.clockSet = ok
		e.offset = t.Sub(e.now().Truncate(time.Second))
		putClock(reply, 1, e.clock())

	case protocol.GetUID:
		copy(reply[1:], e.id)

	case protocol.GetBattery:
		reply[1] = e.cfg.BatteryLevel

	case protocol.GetAppPacket:
		putClock(reply, 1, e.clock())
		copy(reply[5:], e.id)
		reply[13] = e.cfg.BatteryLevel
		reply[14] = e.cfg.Firmware.Major
		reply[15] = e.cfg.Firmware.Minor
		reply[16] = e.cfg.Firmware.Patch

	case protocol.SetAppPacket:
		length := audiomoth.LayoutFor(e.cfg.Firmware).Length
		if len(packet) < 1+length {
			return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortRequest, op, length, len(packet)-1)
		}
		e.settings = append(e.settings[:0], packet[1:1+length]...)
		copy(reply[1:], e.settings)

	case protocol.GetFirmwareVersion:
		reply[1] = e.cfg.Firmware.Major
		reply[2] = e.cfg.Firmware.Minor
		reply[3] = e.cfg.Firmware.Patch

	case protocol.GetFirmwareDescription:
		copy(reply[1:1+protocol.DescriptionLength], e.cfg.Description)

	case protocol.QueryBootloader, protocol.SwitchToBootloader:
		if e.cfg.Bootloader {
			reply[1] = 0x01
		}

	default:
		return nil, fmt.Errorf("%w: 0x%02X", protocol.ErrUnknownOpcode, packet[0])
	}
	return reply, nil
}

// Settings returns the last settings packet written to the device, or nil
func (e *Emulator) Settings() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settings == nil {
		return nil
	}
	return append([]byte(nil), e.settings...)
}

// Requests counts the requests answered so far
func (e *Emulator) Requests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests
}
