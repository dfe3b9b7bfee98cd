package recurring

import (
	"time"

	"github.com/envelope-zero/forecast/internal/types"
)

// Paydays returns all paydays in [from, until).
//
// Paydays repeat every interval days, counted from the anchor. The day
// the schedule is evaluated on has no influence on the dates.
func Paydays(anchor time.Time, interval int, from, until time.Time) []time.Time {
	if interval <= 0 {
		return nil
	}

	anchor = types.Day(anchor)
	from = types.Day(from)
	until = types.Day(until)

	// Number of intervals from the anchor to the first payday on or after from
	diff := types.DaysBetween(anchor, from)
	steps := diff / interval
	if diff > 0 && diff%interval != 0 {
		steps++
	}

	var days []time.Time
	for day := anchor.AddDate(0, 0, steps*interval); day.Before(until); day = day.AddDate(0, 0, interval) {
		days = append(days, day)
	}

	return days
}

// PaydaysInMonth returns the number of paydays in the month.
//
// The count always covers the whole calendar month starting on the 1st.
func PaydaysInMonth(anchor time.Time, interval int, month types.Month) int {
	return len(Paydays(anchor, interval, month.FirstDay(), month.AddDate(0, 1).FirstDay()))
}
