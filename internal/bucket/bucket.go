// Package bucket maps unix timestamps onto the hour and day boundaries used as
// aggregation keys. All boundaries are computed in UTC.
package bucket

import (
	"fmt"

	"apptrack/internal/types"
)

const (
	HourSeconds int64 = 60 * 60
	DaySeconds  int64 = 24 * HourSeconds
)

// floorTo rounds ts down to a multiple of width, also for negative timestamps
func floorTo(ts, width int64) int64 {
	r := ts % width
	if r < 0 {
		r += width
	}
	return ts - r
}

// HourStart returns the start of the hour containing ts
func HourStart(ts int64) int64 {
	return floorTo(ts, HourSeconds)
}

// DayStart returns midnight UTC of the day containing ts
func DayStart(ts int64) int64 {
	return floorTo(ts, DaySeconds)
}

// Bounds is a half-open [Start, End) range of unix seconds
type Bounds struct {
	Start int64
	End   int64
}

// Overlap returns how many seconds of [start, end) fall inside the range.
func (b Bounds) Overlap(start, end int64) int64 {
	s := max(start, b.Start)
	e := min(end, b.End)
	if s >= e {
		return 0
	}
	return e - s
}

// PeriodBounds computes the range covered by period at time now.
// CurrentHour ends one second after now so the running second is included.
func PeriodBounds(period types.TimePeriod, now int64) (Bounds, error) {
	switch period {
	case types.PeriodToday:
		start := DayStart(now)
		return Bounds{Start: start, End: start + DaySeconds}, nil
	case types.PeriodLastCompletedHour:
		end := HourStart(now)
		return Bounds{Start: end - HourSeconds, End: end}, nil
	case types.PeriodCurrentHour:
		return Bounds{Start: HourStart(now), End: now + 1}, nil
	default:
		return Bounds{}, fmt.Errorf("unknown time period %d", int(period))
	}
}

// IsHourly reports whether summaries for period come from the hourly table
// rather than the daily and historical tables.
func IsHourly(period types.TimePeriod) bool {
	return period == types.PeriodLastCompletedHour || period == types.PeriodCurrentHour
}

// FormatDuration renders seconds as HH:MM:SS
func FormatDuration(totalSeconds int64) string {
	if totalSeconds < 0 {
		return "Invalid"
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
