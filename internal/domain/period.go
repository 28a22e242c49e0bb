// Calendar math for summary periods.
//
// All period identity in this package is carried as canonical string keys:
// "2006-01-02" for days and week-start Mondays, "2006-01" for months. Keys
// sort lexicographically in chronological order, which the repository layer
// relies on for range queries. Weeks are ISO weeks: Monday-anchored 7-day
// spans. All computation is done at UTC midnight.
package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DayLayout is the canonical format for day and week-start keys.
	DayLayout = "2006-01-02"
	// MonthLayout is the canonical format for month keys.
	MonthLayout = "2006-01"
)

// ErrInvalidPeriod is returned when a date, week, or month value is malformed
// or inconsistent (e.g. a week start that is not a Monday).
var ErrInvalidPeriod = errors.New("invalid period")

// ParseDay parses a canonical day key into UTC midnight of that day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad day %q", ErrInvalidPeriod, s)
	}
	return t, nil
}

// DayKey formats t as a canonical day key (UTC).
func DayKey(t time.Time) string { return t.UTC().Format(DayLayout) }

// ParseMonth parses a canonical month key into UTC midnight of its first day.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad month %q", ErrInvalidPeriod, s)
	}
	return t, nil
}

// MonthKey formats t as a canonical month key (UTC).
func MonthKey(t time.Time) string { return t.UTC().Format(MonthLayout) }

// WeekStartOf returns UTC midnight of the Monday of t's ISO week.
func WeekStartOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	wd := int(t.Weekday())
	if wd == 0 { // Sunday
		wd = 7
	}
	return t.AddDate(0, 0, -(wd - 1))
}

// WeekEndOf returns the Sunday that closes the week beginning at weekStart.
func WeekEndOf(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// ValidateWeek checks that weekStart/weekEnd form a Monday-anchored 7-day span.
func ValidateWeek(weekStart, weekEnd string) error {
	ws, err := ParseDay(weekStart)
	if err != nil {
		return err
	}
	we, err := ParseDay(weekEnd)
	if err != nil {
		return err
	}
	if ws.Weekday() != time.Monday {
		return fmt.Errorf("%w: week start %s is not a Monday", ErrInvalidPeriod, weekStart)
	}
	if !we.Equal(WeekEndOf(ws)) {
		return fmt.Errorf("%w: week %s..%s is not a 7-day span", ErrInvalidPeriod, weekStart, weekEnd)
	}
	return nil
}

// DaysInRange returns the canonical day keys for every day in [start, end],
// inclusive. An empty slice is returned when end precedes start.
func DaysInRange(start, end time.Time) []string {
	start = DayFloor(start)
	end = DayFloor(end)
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DayKey(d))
	}
	return out
}

// DayFloor truncates t to UTC midnight.
func DayFloor(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInWeek returns the 7 day keys covered by the week beginning at
// weekStart (which must be a Monday key).
func DaysInWeek(weekStart string) ([]string, error) {
	ws, err := ParseDay(weekStart)
	if err != nil {
		return nil, err
	}
	if ws.Weekday() != time.Monday {
		return nil, fmt.Errorf("%w: week start %s is not a Monday", ErrInvalidPeriod, weekStart)
	}
	days := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, DayKey(ws.AddDate(0, 0, i)))
	}
	return days, nil
}

// WeekStartsInRange returns the week-start keys of every ISO week that
// overlaps [start, end]. The first week may begin before start.
func WeekStartsInRange(start, end time.Time) []string {
	start = DayFloor(start)
	end = DayFloor(end)
	var out []string
	for ws := WeekStartOf(start); !ws.After(end); ws = ws.AddDate(0, 0, 7) {
		out = append(out, DayKey(ws))
	}
	return out
}

// MonthsInRange returns the month keys of every calendar month overlapping
// [start, end].
func MonthsInRange(start, end time.Time) []string {
	start = DayFloor(start)
	end = DayFloor(end)
	var out []string
	m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for ; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthKey(m))
	}
	return out
}

// WeeksOverlappingMonth returns the week-start keys of every ISO week that
// overlaps the given calendar month, including a leading week whose Monday
// falls in the previous month.
func WeeksOverlappingMonth(month string) ([]string, error) {
	first, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	last := first.AddDate(0, 1, -1)
	var out []string
	for ws := WeekStartOf(first); !ws.After(last); ws = ws.AddDate(0, 0, 7) {
		out = append(out, DayKey(ws))
	}
	return out, nil
}
