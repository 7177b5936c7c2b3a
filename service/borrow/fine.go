package borrowsvc

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaysBetween counts whole calendar days from 'from' to 'to'. Inputs are
// normalized to midnight UTC first, so wall-clock time never leaks in.
func DaysBetween(from, to time.Time) int64 {
	return int64(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

// Fine computes the amount owed for a late return: multiplier times the
// number of whole days past the expected return date. Callers only invoke
// it when the return is actually late.
func Fine(expectedReturn, today time.Time, multiplier decimal.Decimal) decimal.Decimal {
	daysLate := DaysBetween(expectedReturn, today)
	return multiplier.Mul(decimal.NewFromInt(daysLate))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
