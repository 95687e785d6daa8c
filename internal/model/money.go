package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Materiality is the threshold below which amounts are treated as zero, both
// for display and for balance comparisons.
var Materiality = decimal.New(1, -2)

// IsMaterial reports whether |d| >= 0.01.
func IsMaterial(d decimal.Decimal) bool {
	return d.Abs().GreaterThanOrEqual(Materiality)
}

// NearlyEqual reports whether a and b differ by less than 0.01.
func NearlyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Materiality)
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OnOrBefore compares calendar dates, ignoring time of day.
func OnOrBefore(a, b time.Time) bool {
	return !DateOnly(a).After(DateOnly(b))
}

// InRange reports whether start <= t <= end by calendar date.
func InRange(t, start, end time.Time) bool {
	return OnOrBefore(start, t) && OnOrBefore(t, end)
}

// DayBefore returns the calendar date preceding t.
func DayBefore(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, -1)
}
