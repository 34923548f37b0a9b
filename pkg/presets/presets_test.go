package presets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/lifespan"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"dawn-chorus", "default", "low-power", "ultrasonic"}, Names())
}

func TestGet(t *testing.T) {
	p, err := Get("ultrasonic")
	require.NoError(t, err)
	assert.Equal(t, "ultrasonic", p.Name)
	assert.Equal(t, 384000, p.Settings.SampleRateHz)

	_, err = Get("whale-song")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPresetsAreFreshCopies(t *testing.T) {
	a, err := Get("default")
	require.NoError(t, err)
	a.Settings.Periods[0].EndMinute = 60

	b, err := Get("default")
	require.NoError(t, err)
	assert.Equal(t, 1440, b.Settings.Periods[0].EndMinute)
}

func TestEveryPresetEncodes(t *testing.T) {
	c := audiomoth.Codec{Now: func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }}

	for _, p := range All() {
		t.Run(p.Name, func(t *testing.T) {
			require.NoError(t, p.Settings.Validate())

			packet, err := c.Encode(p.Settings)
			require.NoError(t, err)
			assert.Len(t, packet, audiomoth.PacketLength)

			_, err = lifespan.Calculate(p.Settings)
			require.NoError(t, err)
		})
	}
}

func TestDefaultPresetLifeSpan(t *testing.T) {
	e, err := lifespan.Calculate(NewDefault().Settings)
	require.NoError(t, err)

	assert.Equal(t, int64(1440), e.TotalRecordingCount)
	assert.Equal(t, "5.3 MB", e.FileSize)
	assert.Equal(t, 320.0, e.DailyEnergyMAh)
}

func TestLowPowerPresetLifeSpan(t *testing.T) {
	e, err := lifespan.Calculate(NewLowPower().Settings)
	require.NoError(t, err)

	assert.Equal(t, int64(144), e.TotalRecordingCount)
	assert.Equal(t, "160.0 kB", e.FileSize)
}
