package core

import (
	"time"

	"github.com/google/uuid"
)

// ExpandRecurrence materializes the concrete occurrences of a recurring
// appointment template, starting one step after the template's own date
// and stopping at until (inclusive: an occurrence exactly at until is
// emitted). Non-recurring templates yield an empty sequence; recurrence
// is opt-in, not an error.
//
// Monthly steps anchor to the template's day-of-month. When a month is
// too short the occurrence clamps to its last day, but later months go
// back to the anchor day: Jan 31 -> Feb 28 -> Mar 31.
//
// The template is never mutated and nothing is persisted here; the
// caller owns conflict-checking and committing the result.
func ExpandRecurrence(template Appointment, until time.Time) []Appointment {
	if !template.IsRecurring || template.Frequency.Validate() != nil {
		return nil
	}

	var out []Appointment
	for step := 1; ; step++ {
		date := advance(template.Date, template.Frequency, step)
		if date.After(until) {
			break
		}
		occ := template
		occ.ID = uuid.New()
		occ.Date = date
		occ.IsCanceled = false
		occ.IsNotified = false
		occ.Tags = append([]string(nil), template.Tags...)
		out = append(out, occ)
	}
	return out
}

// advance returns start moved forward by step whole frequency intervals.
func advance(start time.Time, freq RecurrenceFrequency, step int) time.Time {
	switch freq {
	case Daily:
		return start.AddDate(0, 0, step)
	case Weekly:
		return start.AddDate(0, 0, 7*step)
	case Monthly:
		return addMonthsClamped(start, step)
	}
	return start
}

// addMonthsClamped adds n calendar months, clamping the day-of-month to
// the last valid day of the target month instead of letting time.Time
// normalize Jan 31 + 1 month into Mar 3.
func addMonthsClamped(t time.Time, n int) time.Time {
	year := t.Year()
	month := int(t.Month()) + n
	year += (month - 1) / 12
	month = (month-1)%12 + 1

	day := t.Day()
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	h, m, s := t.Clock()
	return time.Date(year, time.Month(month), day, h, m, s, t.Nanosecond(), t.Location())
}

// daysInMonth uses the day-zero trick: day 0 of the next month is the
// last day of this one.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
