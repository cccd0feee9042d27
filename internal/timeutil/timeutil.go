package timeutil

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDay       = errors.New("invalid day, expected YYYY-MM-DD")
	ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:MM")
)

const dayLayout = "2006-01-02"

// TimeOfDay is a wall-clock time without a date, as stored in availability rules.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// ParseDay parses a calendar date. The returned time carries only the
// year/month/day; combine it with a location via DayBounds or At.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return d, nil
}

func FormatDay(d time.Time) string {
	return d.Format(dayLayout)
}

// DayBounds returns the half-open [startOfDay, startOfNextDay) window for the
// given calendar date in loc. Built from calendar components so DST
// transitions keep the bounds on real midnights.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

// At anchors a wall-clock time onto a calendar date in loc.
func At(day time.Time, tod TimeOfDay, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Half-open semantics: back-to-back ranges do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Range is a half-open absolute time interval.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Overlaps(start, end time.Time) bool {
	return Overlaps(r.Start, r.End, start, end)
}
