package domain

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStartOf_MondayAnchoring(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{date(2024, time.January, 1), "2024-01-01"},  // Monday maps to itself
		{date(2024, time.January, 3), "2024-01-01"},  // Wednesday
		{date(2024, time.January, 7), "2024-01-01"},  // Sunday belongs to prior Monday
		{date(2024, time.January, 8), "2024-01-08"},  // next Monday
		{date(2024, time.March, 3), "2024-02-26"},    // week spanning a month boundary
	}
	for _, c := range cases {
		if got := DayKey(WeekStartOf(c.in)); got != c.want {
			t.Errorf("WeekStartOf(%s) = %s, want %s", DayKey(c.in), got, c.want)
		}
	}
}

func TestParseDay_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "01/02/2024", "2024-1-1"} {
		if _, err := ParseDay(s); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("ParseDay(%q): want ErrInvalidPeriod, got %v", s, err)
		}
	}
}

func TestValidateWeek(t *testing.T) {
	if err := ValidateWeek("2024-01-01", "2024-01-07"); err != nil {
		t.Fatalf("valid week rejected: %v", err)
	}
	if err := ValidateWeek("2024-01-02", "2024-01-08"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("Tuesday start accepted: %v", err)
	}
	if err := ValidateWeek("2024-01-01", "2024-01-08"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("8-day span accepted: %v", err)
	}
}

func TestDaysInWeek(t *testing.T) {
	days, err := DaysInWeek("2024-01-01")
	if err != nil {
		t.Fatalf("DaysInWeek: %v", err)
	}
	if len(days) != 7 || days[0] != "2024-01-01" || days[6] != "2024-01-07" {
		t.Fatalf("unexpected days: %v", days)
	}
	if _, err := DaysInWeek("2024-01-02"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("non-Monday start accepted: %v", err)
	}
}

func TestDaysInRange_InclusiveBounds(t *testing.T) {
	days := DaysInRange(date(2024, time.January, 30), date(2024, time.February, 2))
	want := []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}
	if len(days) != len(want) {
		t.Fatalf("got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("got %v, want %v", days, want)
		}
	}
	if got := DaysInRange(date(2024, time.February, 2), date(2024, time.January, 30)); len(got) != 0 {
		t.Errorf("inverted range produced %v", got)
	}
}

func TestWeekStartsInRange(t *testing.T) {
	// Window starting mid-week: the overlapping week's Monday precedes it.
	weeks := WeekStartsInRange(date(2024, time.January, 3), date(2024, time.January, 16))
	want := []string{"2024-01-01", "2024-01-08", "2024-01-15"}
	if len(weeks) != len(want) {
		t.Fatalf("got %v, want %v", weeks, want)
	}
	for i := range want {
		if weeks[i] != want[i] {
			t.Fatalf("got %v, want %v", weeks, want)
		}
	}
}

func TestMonthsInRange(t *testing.T) {
	months := MonthsInRange(date(2023, time.November, 15), date(2024, time.January, 2))
	want := []string{"2023-11", "2023-12", "2024-01"}
	if len(months) != len(want) {
		t.Fatalf("got %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("got %v, want %v", months, want)
		}
	}
}

func TestWeeksOverlappingMonth(t *testing.T) {
	// February 2024: Feb 1 is a Thursday, so the first overlapping week
	// starts Monday Jan 29; the last starts Feb 26.
	weeks, err := WeeksOverlappingMonth("2024-02")
	if err != nil {
		t.Fatalf("WeeksOverlappingMonth: %v", err)
	}
	if len(weeks) != 5 {
		t.Fatalf("got %d weeks (%v), want 5", len(weeks), weeks)
	}
	if weeks[0] != "2024-01-29" || weeks[4] != "2024-02-26" {
		t.Fatalf("unexpected boundary weeks: %v", weeks)
	}

	if _, err := WeeksOverlappingMonth("2024-2"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("malformed month accepted: %v", err)
	}
}
