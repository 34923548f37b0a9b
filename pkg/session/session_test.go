package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/protocol"
	"github.com/herlein/gomoth/pkg/samplerate"
)

var testNow = time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newEmulator(t *testing.T, fw audiomoth.FirmwareVersion) *Emulator {
	t.Helper()
	cfg := DefaultEmulatorConfig()
	cfg.Firmware = fw
	cfg.Now = clock
	e, err := NewEmulator(cfg)
	require.NoError(t, err)
	return e
}

func newSession(t Transport, opts ...Option) *Session {
	opts = append([]Option{WithCodec(audiomoth.Codec{Now: clock})}, opts...)
	return New(t, opts...)
}

func fieldSettings() audiomoth.RecordingSettings {
	return audiomoth.RecordingSettings{
		Periods: []audiomoth.TimePeriod{
			{StartMinute: 1200, EndMinute: 1440},
			{StartMinute: 240, EndMinute: 480},
		},
		LEDEnabled:               true,
		BatteryLevelCheckEnabled: true,
		LocalTime:                true,
		Location:                 time.FixedZone("CEST", 2*3600),
		DutyCycleEnabled:         true,
		Gain:                     2,
		RecordDurationSeconds:    55,
		SleepDurationSeconds:     5,
		SampleRateHz:             48000,
		Filter:                   audiomoth.HighPass(1000),
		AmplitudeThreshold:       128,
		FirstRecordingDate:       civil.Date{Year: 2026, Month: time.May, Day: 1},
	}
}

func TestIdentify(t *testing.T) {
	emu := newEmulator(t, audiomoth.FirmwareVersion{Major: 1, Minor: 2, Patch: 2})
	s := newSession(emu)

	assert.Equal(t, audiomoth.CurrentFirmware, s.Firmware(), "assumed before identification")

	info, err := s.Identify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "24E144085F256163", info.DeviceID)
	assert.Equal(t, "1.2.2", info.FirmwareVersion)
	assert.Equal(t, "4.5V", info.Battery)
	assert.False(t, info.HasDate(), "clock not set yet")
	assert.Equal(t, audiomoth.FirmwareVersion{Major: 1, Minor: 2, Patch: 2}, s.Firmware())
}

func TestSetTime(t *testing.T) {
	emu := newEmulator(t, audiomoth.CurrentFirmware)
	s := newSession(emu)
	ctx := context.Background()

	unset, err := s.Time(ctx)
	require.NoError(t, err)
	assert.True(t, unset.IsZero())

	target := testNow.Add(-90 * time.Minute)
	echoed, err := s.SetTime(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, target, echoed)

	now, err := s.Time(ctx)
	require.NoError(t, err)
	assert.Equal(t, target, now)

	info, err := s.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, target, info.Date)
}

func TestSimpleQueries(t *testing.T) {
	emu := newEmulator(t, audiomoth.CurrentFirmware)
	s := newSession(emu)
	ctx := context.Background()

	uid, err := s.UID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "24E144085F256163", uid)

	battery, err := s.Battery(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.5V", battery)

	desc, err := s.FirmwareDescription(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AudioMoth-Firmware-Basic", desc)

	fw, err := s.FirmwareVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, audiomoth.CurrentFirmware, fw)

	ok, err := s.QueryBootloader(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConfigure(t *testing.T) {
	emu := newEmulator(t, audiomoth.CurrentFirmware)
	s := newSession(emu)

	settings := fieldSettings()
	got, err := s.Configure(context.Background(), settings)
	require.NoError(t, err)
	assert.True(t, settings.Equal(got))

	want, err := audiomoth.Codec{Now: clock}.Encode(settings)
	require.NoError(t, err)
	assert.Equal(t, want, emu.Settings())
}

func TestConfigureUsesIdentifiedFirmware(t *testing.T) {
	fw := audiomoth.FirmwareVersion{Major: 1, Minor: 2, Patch: 0}
	emu := newEmulator(t, fw)
	s := newSession(emu)
	ctx := context.Background()

	_, err := s.Identify(ctx)
	require.NoError(t, err)

	_, err = s.Configure(ctx, fieldSettings())
	assert.ErrorIs(t, err, samplerate.ErrUnsupportedSampleRate, "48 kHz is not in the legacy table")

	settings := fieldSettings()
	settings.SampleRateHz = 16000
	got, err := s.Configure(ctx, settings)
	require.NoError(t, err)
	assert.Equal(t, fw, got.Firmware)
	assert.Len(t, emu.Settings(), audiomoth.LengthV120)
	assert.False(t, got.Filter.Enabled(), "1.2.0 has no filter field")
	assert.True(t, got.LocalTime)
}

// corrupting flips one byte of every reply
type corrupting struct {
	Transport
	at int
}

func (c corrupting) Exchange(ctx context.Context, packet []byte) ([]byte, error) {
	reply, err := c.Transport.Exchange(ctx, packet)
	if err == nil {
		reply[c.at] ^= 0x01
	}
	return reply, err
}

func TestConfigureDetectsMismatch(t *testing.T) {
	emu := newEmulator(t, audiomoth.CurrentFirmware)
	// byte 17 of the settings is the LED flag
	s := newSession(corrupting{Transport: emu, at: 1 + 17})

	got, err := s.Configure(context.Background(), fieldSettings())
	assert.ErrorIs(t, err, ErrVerifyMismatch)
	assert.False(t, got.LEDEnabled)
}

type scripted struct {
	reply []byte
	err   error
}

func (s scripted) Exchange(context.Context, []byte) ([]byte, error) {
	return s.reply, s.err
}

func TestExchangeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := newSession(scripted{reply: []byte{byte(protocol.GetTime), 0, 0, 0, 0}}).Battery(ctx)
	assert.ErrorIs(t, err, protocol.ErrOpcodeMismatch)

	broken := errors.New("pipe closed")
	_, err = newSession(scripted{err: broken}).UID(ctx)
	assert.ErrorIs(t, err, broken)
	assert.Contains(t, err.Error(), "GET_UID")

	emu := newEmulator(t, audiomoth.CurrentFirmware)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = newSession(emu).Identify(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := newSession(newEmulator(t, audiomoth.CurrentFirmware), WithLogger(log))
	_, err := s.Battery(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "opcode=GET_BATTERY")
	assert.Contains(t, buf.String(), `packet="04 0A 00`)
}

func TestConcurrentUse(t *testing.T) {
	emu := newEmulator(t, audiomoth.CurrentFirmware)
	s := newSession(emu)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Battery(context.Background()); err != nil {
				errs <- err
			}
			if _, err := s.Configure(context.Background(), fieldSettings()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, workers*2, emu.Requests())
}
