package util

import "time"

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns the date for a target day in a given month, handling months
// with fewer days (e.g., day 31 in February returns Feb 28/29)
func ClampDay(year int, month time.Month, targetDay int) time.Time {
	lastDay := LastDayOfMonth(year, month)

	actualDay := targetDay
	if actualDay < 1 {
		actualDay = 1
	}
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// AddMonths advances a date by n calendar months, clamping to the last valid
// day of the target month. Unlike time.AddDate, Jan 31 + 1 month yields
// Feb 28/29, never Mar 2/3.
func AddMonths(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return ClampDay(target.Year(), target.Month(), day)
}

// AddYears advances a date by n years with the same end-of-month clamping
// (Feb 29 + 1 year yields Feb 28).
func AddYears(d time.Time, n int) time.Time {
	return AddMonths(d, n*12)
}

// MonthStart returns the first day of the month containing d.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of the month containing d.
func MonthEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates a time to midnight UTC.
func DateOnly(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
