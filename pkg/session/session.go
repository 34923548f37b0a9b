// Package session drives an AudioMoth through a Transport: one request, one
// reply, decoded and checked against the request.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/bytecodec"
	"github.com/herlein/gomoth/pkg/logging"
	"github.com/herlein/gomoth/pkg/protocol"
)

// DefaultTimeout bounds a single exchange when the caller's context has no deadline
const DefaultTimeout = time.Second

// Transport moves one request to the device and returns its reply
type Transport interface {
	Exchange(ctx context.Context, packet []byte) ([]byte, error)
}

// Session serializes exchanges with one device and remembers its firmware
// version once identified
type Session struct {
	mu        sync.Mutex
	transport Transport
	codec     audiomoth.Codec
	firmware  audiomoth.FirmwareVersion
	timeout   time.Duration
	log       *slog.Logger
}

// Option configures a Session
type Option func(*Session)

// WithLogger logs exchanges to log
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithCodec sets the codec used for settings packets and echoes
func WithCodec(c audiomoth.Codec) Option {
	return func(s *Session) { s.codec = c }
}

// WithFirmware sets the firmware version assumed before Identify is called
func WithFirmware(v audiomoth.FirmwareVersion) Option {
	return func(s *Session) { s.firmware = v }
}

// WithTimeout bounds exchanges whose context carries no deadline
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// New returns a session driving t
func New(t Transport, opts ...Option) *Session {
	s := &Session{
		transport: t,
		timeout:   DefaultTimeout,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Firmware is the version reported by the last Identify or FirmwareVersion call
func (s *Session) Firmware() audiomoth.FirmwareVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firmware.OrCurrent()
}

// exchange sends packet and decodes the reply for the session's firmware.
// Callers hold s.mu.
func (s *Session) exchange(ctx context.Context, op protocol.Opcode, packet []byte) (protocol.Reply, error) {
	return s.exchangeFor(ctx, s.firmware, op, packet)
}

func (s *Session) exchangeFor(ctx context.Context, firmware audiomoth.FirmwareVersion, op protocol.Opcode, packet []byte) (protocol.Reply, error) {
	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Debug("send", "opcode", op, "packet", bytecodec.HexDump(packet))
	raw, err := s.transport.Exchange(ctx, packet)
	if err != nil {
		return protocol.Reply{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("receive", "opcode", op, "packet", bytecodec.HexDump(raw))

	decoder := protocol.Decoder{Codec: s.codec, Firmware: firmware}
	reply, err := decoder.Decode(op, raw)
	if err != nil {
		return protocol.Reply{}, fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

// Identify reads the device identification block and adopts its firmware version
func (s *Session) Identify(ctx context.Context) (audiomoth.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.GetAppPacket, protocol.Request(protocol.GetAppPacket))
	if err != nil {
		return audiomoth.DeviceInfo{}, err
	}
	s.firmware = reply.Info.Version
	s.log.Info("identified device",
		"id", reply.Info.DeviceID,
		"firmware", reply.Info.FirmwareVersion,
		"battery", reply.Info.Battery)
	return *reply.Info, nil
}

// FirmwareVersion asks for the firmware version and adopts it
func (s *Session) FirmwareVersion(ctx context.Context) (audiomoth.FirmwareVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.GetFirmwareVersion, protocol.Request(protocol.GetFirmwareVersion))
	if err != nil {
		return audiomoth.FirmwareVersion{}, err
	}
	s.firmware = reply.Firmware
	return reply.Firmware, nil
}

// FirmwareDescription reads the firmware's name string
func (s *Session) FirmwareDescription(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.GetFirmwareDescription, protocol.Request(protocol.GetFirmwareDescription))
	if err != nil {
		return "", err
	}
	return reply.Description, nil
}

// Time reads the device clock. The zero time means the clock was never set.
func (s *Session) Time(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.GetTime, protocol.Request(protocol.GetTime))
	if err != nil {
		return time.Time{}, err
	}
	return reply.Time, nil
}

// SetTime sets the device clock and returns the time the device echoed
func (s *Session) SetTime(ctx context.Context, t time.Time) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.SetTime, protocol.SetTimeRequest(t))
	if err != nil {
		return time.Time{}, err
	}
	s.log.Info("set device time", "time", reply.Time)
	return reply.Time, nil
}

// UID reads the device ID in display order
func (s *Session) UID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.GetUID, protocol.Request(protocol.GetUID))
	if err != nil {
		return "", err
	}
	return reply.DeviceID, nil
}

// Battery reads the battery state as a voltage string
func (s *Session) Battery(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.GetBattery, protocol.Request(protocol.GetBattery))
	if err != nil {
		return "", err
	}
	return reply.Battery, nil
}

// QueryBootloader reports whether the firmware can switch to the bootloader
func (s *Session) QueryBootloader(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.exchange(ctx, protocol.QueryBootloader, protocol.Request(protocol.QueryBootloader))
	if err != nil {
		return false, err
	}
	return reply.Bootloader, nil
}

// Configure writes settings to the device and verifies the echo. Settings
// without a firmware version target the session's firmware. The returned
// settings are the ones the device reported.
func (s *Session) Configure(ctx context.Context, settings audiomoth.RecordingSettings) (audiomoth.RecordingSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.Firmware.IsZero() {
		settings.Firmware = s.firmware.OrCurrent()
	}
	packet, err := protocol.SetAppPacketRequest(s.codec, settings)
	if err != nil {
		return audiomoth.RecordingSettings{}, err
	}

	reply, err := s.exchangeFor(ctx, settings.Firmware, protocol.SetAppPacket, packet)
	if err != nil {
		return audiomoth.RecordingSettings{}, err
	}

	want := s.codec.Normalize(settings)
	if !want.Equal(*reply.Settings) {
		s.log.Warn("settings echo differs", "sent", bytecodec.HexDump(packet))
		return *reply.Settings, ErrVerifyMismatch
	}
	s.log.Info("configured device",
		"firmware", settings.Firmware,
		"periods", len(want.Periods),
		"sample_rate", settings.SampleRateHz)
	return *reply.Settings, nil
}
