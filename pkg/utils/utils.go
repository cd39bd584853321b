package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// SimpleInterestTotal computes principal plus single-period simple interest.
// Formula: total = principal + principal * rate / 100
func SimpleInterestTotal(principal, rate decimal.Decimal) decimal.Decimal {
	interest := principal.Mul(rate).Div(oneHundred)
	return principal.Add(interest).Round(2)
}

// Percentage returns part/total*100 rounded to 2 decimal places, and zero when
// total is zero.
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(oneHundred).Round(2)
}

// AddMonthsClamped adds calendar months, clamping the day of month to the last
// day of the target month. time.AddDate would normalize Jan 31 + 1 month into
// Mar 2/3; billing cadences need Feb 28/29 instead.
func AddMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := DaysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYearsClamped adds calendar years with the same day clamping, so
// Feb 29 + 1 year lands on Feb 28.
func AddYearsClamped(t time.Time, years int) time.Time {
	return AddMonthsClamped(t, years*12)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TruncateToDay drops the time-of-day component.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsDatePast checks if a date is strictly before the given reference instant.
func IsDatePast(date, now time.Time) bool {
	return date.Before(now)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
