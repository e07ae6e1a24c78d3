package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd string into midnight UTC of that date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}
	return t, nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CalendarDay returns the calendar date t falls on in loc, as midnight UTC.
// Dates from different zones become comparable without their time of day.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsPastDue reports whether today's date in loc is strictly after due's date.
// Due dates are stored without a zone and read as UTC.
func IsPastDue(due, now time.Time, loc *time.Location) bool {
	return CalendarDay(now, loc).After(CalendarDay(due, time.UTC))
}
