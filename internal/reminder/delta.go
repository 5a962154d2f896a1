package reminder

import (
	"time"
)

const day = 24 * time.Hour

// DateDelta is the signed calendar offset from today to a due date. Months
// counts whole months (day-of-month clipped to the end of shorter months) and
// Days is what remains; both carry the sign of due minus today.
type DateDelta struct {
	Months int
	Days   int
}

// Delta computes the calendar-aware offset between due and today. Only the
// calendar dates matter; clock time and location are discarded.
func Delta(due, today time.Time) DateDelta {
	due, today = civil(due), civil(today)

	months := (due.Year()-today.Year())*12 + int(due.Month()-today.Month())
	anchor := addMonths(today, months)

	if due.Before(today) {
		for due.After(anchor) {
			months++
			anchor = addMonths(today, months)
		}
	} else {
		for due.Before(anchor) {
			months--
			anchor = addMonths(today, months)
		}
	}

	return DateDelta{
		Months: months,
		Days:   int(due.Sub(anchor) / day),
	}
}

// DaysBetween returns the signed number of calendar days from today to due.
func DaysBetween(today, due time.Time) int {
	return int(civil(due).Sub(civil(today)) / day)
}

// WorkingDays counts Monday to Friday dates in [from, to], both ends
// inclusive. It returns 0 when to is before from.
func WorkingDays(from, to time.Time) int {
	from, to = civil(from), civil(to)
	if to.Before(from) {
		return 0
	}

	span := int(to.Sub(from)/day) + 1
	weeks := span / 7
	count := weeks * 5

	for d := from.AddDate(0, 0, weeks*7); !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// civil truncates t to its calendar date at midnight UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addMonths shifts a civil date by n months, clipping the day to the last
// day of the target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()

	idx := int(m) - 1 + n
	y += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		y--
	}
	month := time.Month(idx + 1)

	if last := daysIn(y, month); d > last {
		d = last
	}
	return time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
