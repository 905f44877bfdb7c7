package utils

import (
	"fmt"
	"time"

	"github.com/sproutapp/sprout/internal/constants"
)

// ParseDay parses a calendar-date string in the standard YYYY-MM-DD format.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// FormatDay formats a time as a YYYY-MM-DD calendar date.
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns today's date string in the given time's location, i.e. the
// caller's locale determines where the day boundary falls.
func Today(now time.Time) string {
	return FormatDay(now)
}

// DaysBetween returns the whole-day delta from a to b, both interpreted as
// calendar dates.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// WeekStart returns the Monday of the week containing t, at midnight.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
}
