package types

import "time"

// DateFormat is the format used for calendar days in keys, logs and query parameters.
const DateFormat = "2006-01-02"

// Day truncates a time to midnight UTC of its calendar day.
//
// The calendar day is taken in the location of t, so that 23:30 local time
// on the 3rd is still the 3rd.
func Day(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a "YYYY-MM-DD" string into midnight UTC of that day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
