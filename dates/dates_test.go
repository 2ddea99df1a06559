package dates

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 5, 2, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 4, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, end); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
}

func TestAddDaysCrossesMonths(t *testing.T) {
	got, err := AddDays("2024-02-28", 2)
	if err != nil || got != "2024-03-01" {
		t.Fatalf("expected 2024-03-01, got %q, %v", got, err)
	}
	if _, err := AddDays("02/28/2024", 1); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

func TestNormalizeClock(t *testing.T) {
	cases := map[string]string{"09:00:00": "09:00", "9:30": "09:30", "18:30": "18:30"}
	for in, want := range cases {
		got, err := NormalizeClock(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %q, got %q, %v", in, want, got, err)
		}
	}
	if _, err := NormalizeClock("25:00"); err == nil {
		t.Fatalf("expected error for out of range hour")
	}
}

func TestRelativeDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 18, 45, 0, 0, time.UTC)
	cases := map[string]string{
		"2024-06-10": "Aujourd'hui",
		"2024-06-11": "Demain",
		"2024-06-09": "Hier",
		"2024-06-14": "Dans 4 jours",
		"2024-06-01": "Il y a 9 jours",
		"bad":        "bad",
	}
	for date, want := range cases {
		if got := RelativeDay(date, now); got != want {
			t.Fatalf("RelativeDay(%q) = %q, want %q", date, got, want)
		}
	}
}
