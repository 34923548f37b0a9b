// Package lifespan estimates what a recording schedule costs per day: how
// many files it produces, how large they are and how much charge it draws.
package lifespan

import (
	"fmt"
	"math"

	"github.com/herlein/gomoth/pkg/audiomoth"
	"github.com/herlein/gomoth/pkg/samplerate"
)

const (
	// StartUpSeconds is the time the device spends starting each recording
	StartUpSeconds = 2
	// SleepCurrentMA is the draw between recordings
	SleepCurrentMA = 0.125
	// MaxWAVLength is the largest file the firmware can write
	MaxWAVLength = 4294966806

	secondsPerDay = 86400
)

// Estimate is the daily cost of a schedule
type Estimate struct {
	TotalRecordingCount   int64
	CompleteCount         int64
	TruncatedCount        int64
	TruncatedSeconds      int64
	TotalRecordingSeconds int64

	Plural bool
	// UpTo is set when file sizes are upper bounds, either because recording
	// is amplitude triggered or because the periods differ in length
	UpTo bool

	// FileSize is FileSizeBytes formatted for display
	FileSize      string
	FileSizeBytes int64
	// TotalSizeBytes is everything recorded in one day
	TotalSizeBytes  int64
	ExceedsWAVLimit bool

	DailyEnergyMAh float64
}

// TotalFileSize formats the size of one day of files
func (e Estimate) TotalFileSize() string {
	return FormatFileSize(e.TotalRecordingCount * e.FileSizeBytes)
}

// Calculate estimates the daily recording count, file size and energy use of
// s. It does not modify s.
func Calculate(s audiomoth.RecordingSettings) (Estimate, error) {
	// nothing is recorded, so the rest of the settings cannot matter
	if len(s.Periods) == 0 {
		return Estimate{FileSize: FormatFileSize(0)}, nil
	}

	if err := s.Validate(); err != nil {
		return Estimate{}, err
	}
	rate, err := samplerate.Lookup(s.SampleRateHz, s.Legacy())
	if err != nil {
		return Estimate{}, err
	}

	schedule := s.Schedule()

	bytesPerSecond := rate.BytesPerSecond()
	e := Estimate{UpTo: s.AmplitudeThresholdEnabled()}

	var representative int64
	if s.DutyCycleEnabled {
		e.CompleteCount, e.TruncatedCount, e.TruncatedSeconds = dailyCount(schedule, int64(s.RecordDurationSeconds), int64(s.SleepDurationSeconds))
		e.TotalRecordingSeconds = e.CompleteCount*int64(s.RecordDurationSeconds) + e.TruncatedSeconds

		recordingSize := bytesPerSecond * int64(s.RecordDurationSeconds)
		e.TotalSizeBytes = recordingSize*e.CompleteCount + bytesPerSecond*e.TruncatedSeconds
		representative = recordingSize
	} else {
		var longest int64
		for i, p := range schedule {
			length := int64(p.Minutes())
			if i > 0 && !s.AmplitudeThresholdEnabled() && length != int64(schedule[i-1].Minutes()) {
				e.UpTo = true
			}
			e.TotalRecordingSeconds += length * 60
			longest = max(longest, length)
		}
		e.CompleteCount = int64(len(schedule))
		e.TotalSizeBytes = bytesPerSecond * e.TotalRecordingSeconds
		representative = bytesPerSecond * longest * 60
	}

	e.TotalRecordingCount = e.CompleteCount + e.TruncatedCount
	e.Plural = e.TotalRecordingCount > 1

	e.FileSizeBytes = e.TotalSizeBytes
	if e.CompleteCount > 1 {
		e.FileSizeBytes = representative
	}
	e.FileSize = FormatFileSize(e.FileSizeBytes)
	e.ExceedsWAVLimit = e.FileSizeBytes > MaxWAVLength

	e.DailyEnergyMAh = dailyEnergy(e.TotalRecordingCount, e.TotalRecordingSeconds, rate)
	return e, nil
}

// dailyCount fits record/sleep cycles into each period. A trailing slot too
// short for a full recording yields a truncated one.
func dailyCount(schedule []audiomoth.TimePeriod, record, sleep int64) (complete, truncated, truncatedSeconds int64) {
	cycle := record + sleep
	for _, p := range schedule {
		periodSeconds := int64(p.Minutes()) * 60
		count := periodSeconds / cycle
		remaining := periodSeconds - count*cycle
		if remaining > 0 {
			if remaining >= record {
				count++
			} else {
				truncated++
				truncatedSeconds += remaining
			}
		}
		complete += count
	}
	return complete, truncated, truncatedSeconds
}

func dailyEnergy(count, recordingSeconds int64, rate samplerate.Config) float64 {
	startUp := count * StartUpSeconds
	recording := max(0, min(secondsPerDay-startUp, recordingSeconds))
	sleeping := max(0, secondsPerDay-startUp-recordingSeconds)

	mAh := (float64(recording)*rate.RecordCurrentMA +
		float64(startUp)*rate.StartCurrentMA +
		float64(sleeping)*SleepCurrentMA) / 3600

	precision := 1.0
	switch {
	case mAh > 100:
		precision = 10
	case mAh > 50:
		precision = 5
	case mAh > 20:
		precision = 2
	}
	return math.Round(mAh/precision) * precision
}

// FormatFileSize renders a byte count with SI prefixes: "512 B", "5.8 MB"
func FormatFileSize(bytes int64) string {
	if -1000 < bytes && bytes < 1000 {
		return fmt.Sprintf("%d B", bytes)
	}
	prefixes := "kMGTPE"
	i := 0
	for bytes <= -999950 || bytes >= 999950 {
		bytes /= 1000
		i++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/1000.0, prefixes[i])
}
