// Package recurrence implements the calendar math for recurring Actions.
//
// The calculator is a pure function: it never reads the clock and performs
// no I/O, so the scheduler's rescheduling behavior is deterministic and
// unit-testable without sleeping real time. Callers supply the anchor
// instant; the processor passes an Action's original trigger time, never
// "now", so a weekly reminder scheduled for Monday 9am stays anchored to
// Monday 9am even when the processor runs late.
package recurrence

import (
	"time"

	"touchbase/internal/types"
)

// NextTriggerTime returns the instant one recurrence period after last.
//
// Weeks, months, and years are calendar units, not fixed durations, so the
// input is converted to UTC before the span is added:
//
//	weekly       -> +1 week
//	biweekly     -> +2 weeks
//	monthly      -> +1 month
//	quarterly    -> +3 months
//	semiannually -> +6 months
//	annually     -> +1 year
//
// Month and year additions clamp the day-of-month to the last day of the
// target month rather than letting the overflow spill into the following
// month: 2025-01-31 + monthly is 2025-02-28, and 2024-02-29 + annually is
// 2025-02-28. time.AddDate is deliberately not used for these spans
// because it normalizes overflow (Jan 31 + 1 month = Mar 2 or 3).
//
// FrequencySingle is never passed by the processor; if it (or an unknown
// frequency) arrives anyway the input is returned unchanged rather than
// failing.
func NextTriggerTime(last time.Time, f types.Frequency) time.Time {
	utc := last.UTC()
	switch f {
	case types.FrequencyWeekly:
		return utc.AddDate(0, 0, 7)
	case types.FrequencyBiweekly:
		return utc.AddDate(0, 0, 14)
	case types.FrequencyMonthly:
		return addMonthsClamped(utc, 1)
	case types.FrequencyQuarterly:
		return addMonthsClamped(utc, 3)
	case types.FrequencySemiAnnually:
		return addMonthsClamped(utc, 6)
	case types.FrequencyAnnually:
		return addMonthsClamped(utc, 12)
	default:
		return last
	}
}

// addMonthsClamped adds the given number of months to t, clamping the
// day-of-month to the last day of the target month when the source day
// does not exist there.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)

	if last := daysInMonth(targetYear, targetMonth); day > last {
		day = last
	}

	return time.Date(targetYear, targetMonth, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// daysInMonth returns the number of days in the given month. Day 0 of the
// following month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
