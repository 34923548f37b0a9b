package audiomoth

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 1440
	// MaxPeriods is the size of the firmware's period table
	MaxPeriods = 5
)

// TimePeriod is a recording window in minutes of the day. EndMinute is
// exclusive and may be 1440 for windows running to midnight.
type TimePeriod struct {
	StartMinute int `json:"startMins" yaml:"startMins" mapstructure:"startMins"`
	EndMinute   int `json:"endMins" yaml:"endMins" mapstructure:"endMins"`
}

// Validate checks that the period lies within one day and is not empty
func (p TimePeriod) Validate() error {
	if p.StartMinute < 0 || p.StartMinute >= MinutesPerDay {
		return fmt.Errorf("%w: start %d outside [0,%d)", ErrInvalidPeriod, p.StartMinute, MinutesPerDay)
	}
	if p.EndMinute <= 0 || p.EndMinute > MinutesPerDay {
		return fmt.Errorf("%w: end %d outside (0,%d]", ErrInvalidPeriod, p.EndMinute, MinutesPerDay)
	}
	if p.StartMinute >= p.EndMinute {
		return fmt.Errorf("%w: %s starts after it ends", ErrInvalidPeriod, p)
	}
	return nil
}

// Minutes returns the period length
func (p TimePeriod) Minutes() int {
	return p.EndMinute - p.StartMinute
}

// String formats the period as HH:MM-HH:MM
func (p TimePeriod) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		p.StartMinute/60, p.StartMinute%60, p.EndMinute/60, p.EndMinute%60)
}

// ParseTimePeriod parses "HH:MM-HH:MM"; "24:00" is accepted as an end time
func ParseTimePeriod(s string) (TimePeriod, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return TimePeriod{}, fmt.Errorf("%w: %q is not HH:MM-HH:MM", ErrInvalidPeriod, s)
	}

	var p TimePeriod
	var err error
	if p.StartMinute, err = parseClock(start); err != nil {
		return TimePeriod{}, fmt.Errorf("%w: %q: %v", ErrInvalidPeriod, s, err)
	}
	if p.EndMinute, err = parseClock(end); err != nil {
		return TimePeriod{}, fmt.Errorf("%w: %q: %v", ErrInvalidPeriod, s, err)
	}
	if err := p.Validate(); err != nil {
		return TimePeriod{}, err
	}
	return p, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("missing ':' in %q", s)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%q out of range", s)
	}
	return hours*60 + minutes, nil
}

// SortPeriods returns a copy ordered by start minute. Periods sharing a start
// keep their relative order.
func SortPeriods(periods []TimePeriod) []TimePeriod {
	sorted := make([]TimePeriod, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMinute < sorted[j].StartMinute
	})
	return sorted
}

// shiftPeriod moves p by delta minutes and folds it back into the day. A
// period covering the whole day stays (0,1440) so it never collapses into an
// empty window.
func shiftPeriod(p TimePeriod, delta int) TimePeriod {
	if p.Minutes() >= MinutesPerDay {
		return TimePeriod{StartMinute: 0, EndMinute: MinutesPerDay}
	}
	return TimePeriod{StartMinute: foldStart(p.StartMinute + delta), EndMinute: foldEnd(p.EndMinute + delta)}
}

// foldStart maps any minute count onto [0,1440)
func foldStart(m int) int {
	return ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}

// foldEnd maps any minute count onto (0,1440]
func foldEnd(m int) int {
	return foldStart(m-1) + 1
}
