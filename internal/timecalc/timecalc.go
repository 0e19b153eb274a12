package timecalc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Tiliavir/punchclock/internal/model"
)

const (
	// DateLayout is the layout of DailyEntry.Date.
	DateLayout = "2006-01-02"
	// ClockLayout is the layout of the four punches.
	ClockLayout = "15:04:05"
)

var (
	// ErrBadClock is returned when a punch is not a valid HH:MM:SS value.
	ErrBadClock = errors.New("malformed time of day")
	// ErrClockOrder is returned when punches run backwards, e.g. an out time
	// earlier than the in time. Spans over midnight are not wrapped.
	ErrClockOrder = errors.New("punches out of order")
)

// Durations holds the computed spans of one entry. A nil field means
// "not available".
type Durations struct {
	Worked *time.Duration
	Break  *time.Duration
}

// DateKey returns the store key for the calendar day of t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockKey returns the punch value for the time of day of t.
func ClockKey(t time.Time) string {
	return t.Format(ClockLayout)
}

// ParseClock parses an HH:MM:SS punch into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// ComputeDurations derives worked and break time from an entry.
//
// Worked time needs both inTime and outTime. Break time is only reported
// alongside worked time, when both break punches are present, and is then
// subtracted from the in/out span.
func ComputeDurations(e model.DailyEntry) (Durations, error) {
	var d Durations
	if e.InTime == nil || e.OutTime == nil {
		return d, nil
	}

	in, err := ParseClock(*e.InTime)
	if err != nil {
		return d, err
	}
	out, err := ParseClock(*e.OutTime)
	if err != nil {
		return d, err
	}
	if out < in {
		return d, fmt.Errorf("%w: out %s before in %s", ErrClockOrder, *e.OutTime, *e.InTime)
	}
	worked := out - in

	if e.StartBreak != nil && e.EndBreak != nil {
		start, err := ParseClock(*e.StartBreak)
		if err != nil {
			return d, err
		}
		end, err := ParseClock(*e.EndBreak)
		if err != nil {
			return d, err
		}
		if end < start {
			return d, fmt.Errorf("%w: break ends %s before it starts %s", ErrClockOrder, *e.EndBreak, *e.StartBreak)
		}
		brk := end - start
		if brk > worked {
			return d, fmt.Errorf("%w: break longer than the working day", ErrClockOrder)
		}
		worked -= brk
		d.Break = &brk
	}

	d.Worked = &worked
	return d, nil
}

// FormatHours renders d as decimal hours, e.g. "8.50 hrs". Used by the live
// summary and the preview table.
func FormatHours(d time.Duration) string {
	return fmt.Sprintf("%.2f hrs", d.Hours())
}

// FormatBreakMinutes renders d as whole minutes, e.g. "30 min".
func FormatBreakMinutes(d time.Duration) string {
	return fmt.Sprintf("%d min", int64(math.Round(d.Minutes())))
}

// FormatHMM renders d as floored hours and zero-padded minutes, e.g. "8:05".
// Used by the spreadsheet export.
func FormatHMM(d time.Duration) string {
	total := int64(d / time.Minute)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatDuration formats d as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := monday.AddDate(0, 0, 6)
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
