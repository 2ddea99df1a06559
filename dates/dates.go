// Package dates handles the calendar days and clock times the booking API
// exchanges.
package dates

import (
	"fmt"
	"time"
)

// DateLayout is the API's date format.
const DateLayout = "2006-01-02"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// NormalizeClock reduces "09:00:00" or "9:00" to "09:00".
func NormalizeClock(s string) (string, error) {
	for _, layout := range []string{"15:04:05", "15:04", "3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time %q, expected HH:MM", s)
}

// RelativeDay names date relative to now: "Aujourd'hui", "Demain", "Hier",
// or a count of days.
func RelativeDay(date string, now time.Time) string {
	t, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return date
	}
	switch days := DaysBetween(now, t); {
	case days == 0:
		return "Aujourd'hui"
	case days == 1:
		return "Demain"
	case days == -1:
		return "Hier"
	case days > 1:
		return fmt.Sprintf("Dans %d jours", days)
	default:
		return fmt.Sprintf("Il y a %d jours", -days)
	}
}
