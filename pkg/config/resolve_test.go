package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/presets"
)

func TestResolveSettingsPreset(t *testing.T) {
	opts := Options{Timezone: "Australia/Brisbane", Firmware: "1.2.2"}

	s, err := ResolveSettings("", "dawn-chorus", opts)
	require.NoError(t, err)

	assert.Equal(t, audiomoth.FirmwareVersion{Major: 1, Minor: 2, Patch: 2}, s.Firmware)
	require.NotNil(t, s.Location)
	assert.Equal(t, "Australia/Brisbane", s.Location.String())
}

func TestResolveSettingsFileWins(t *testing.T) {
	path := writeFile(t, "s.yaml", "sampleRate: 16000\nfirmwareVersion: 1.4.0\n")

	s, err := ResolveSettings(path, "ultrasonic", Options{Timezone: "UTC"})
	require.NoError(t, err)

	assert.Equal(t, 16000, s.SampleRateHz)
	assert.Equal(t, audiomoth.FirmwareVersion{Major: 1, Minor: 4, Patch: 0}, s.Firmware)
}

func TestResolveSettingsErrors(t *testing.T) {
	_, err := ResolveSettings("", "", Options{})
	assert.ErrorIs(t, err, ErrNoSettings)

	_, err = ResolveSettings("", "whale-song", Options{})
	assert.ErrorIs(t, err, presets.ErrUnknownPreset)

	_, err = ResolveSettings("", "default", Options{Timezone: "Atlantis/Central"})
	assert.Error(t, err)

	path := writeFile(t, "bad.json", `{"gain": 900}`)
	_, err = ResolveSettings(path, "", Options{Timezone: "UTC"})
	assert.ErrorIs(t, err, ErrInvalidSettingsFile)
}

func TestResolveSettingsKeepsPresetZone(t *testing.T) {
	p := presets.NewUltrasonic()
	require.True(t, p.Settings.LocalTime)

	s, err := ResolveSettings("", p.Name, Options{Timezone: "Asia/Kolkata"})
	require.NoError(t, err)
	require.NotNil(t, s.Location)
	assert.Equal(t, "Asia/Kolkata", s.Location.String())
}
