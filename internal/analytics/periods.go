package analytics

import (
	"time"

	"splitbook/internal/core"
)

// DefaultTimezone pins month boundaries for users whose transactions are
// timestamped inconsistently. Australian GST context, so Sydney.
const DefaultTimezone = "Australia/Sydney"

// MonthBounds returns [start, end) of the calendar month containing ref,
// evaluated in loc.
func MonthBounds(ref time.Time, loc *time.Location) (time.Time, time.Time) {
	local := ref.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// QuarterOf returns the calendar quarter (1-4) containing ref in loc.
func QuarterOf(ref time.Time, loc *time.Location) int {
	return (int(ref.In(loc).Month())-1)/3 + 1
}

// QuarterMonths returns a reference date inside each of the three months of
// the quarter containing ref.
func QuarterMonths(ref time.Time, loc *time.Location) [3]time.Time {
	local := ref.In(loc)
	first := (QuarterOf(ref, loc)-1)*3 + 1
	var months [3]time.Time
	for i := 0; i < 3; i++ {
		months[i] = time.Date(local.Year(), time.Month(first+i), 1, 0, 0, 0, 0, loc)
	}
	return months
}

// YearQuarters returns a reference date inside each quarter of the calendar
// year containing ref.
func YearQuarters(ref time.Time, loc *time.Location) [4]time.Time {
	local := ref.In(loc)
	var quarters [4]time.Time
	for i := 0; i < 4; i++ {
		quarters[i] = time.Date(local.Year(), time.Month(i*3+1), 1, 0, 0, 0, 0, loc)
	}
	return quarters
}

// DaysInMonth returns the number of calendar days in the month containing
// ref. Calendar arithmetic, so leap years fall out naturally.
func DaysInMonth(ref time.Time, loc *time.Location) int {
	local := ref.In(loc)
	return time.Date(local.Year(), local.Month()+1, 0, 0, 0, 0, 0, loc).Day()
}

// trendOf compares the first and last transaction amounts in date order
// inside the window. This is a within-window indicator, not month-over-month.
func trendOf(transactions []core.Transaction) core.TrendDirection {
	if len(transactions) < 2 {
		return core.TrendFlat
	}
	first := transactions[0].Amount
	last := transactions[len(transactions)-1].Amount
	switch {
	case last.GreaterThan(first):
		return core.TrendIncreasing
	case last.LessThan(first):
		return core.TrendDecreasing
	default:
		return core.TrendFlat
	}
}
