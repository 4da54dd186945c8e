package types

import (
	"time"

	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/samber/lo"
)

// RecurrencePeriod is the fixed interval between successive invoices of a fee
type RecurrencePeriod string

const (
	RecurrencePeriodMonthly   RecurrencePeriod = "monthly"
	RecurrencePeriodQuarterly RecurrencePeriod = "quarterly"
	RecurrencePeriodAnnual    RecurrencePeriod = "annual"
)

func (p RecurrencePeriod) String() string {
	return string(p)
}

func (p RecurrencePeriod) Validate() error {
	allowed := []RecurrencePeriod{
		RecurrencePeriodMonthly,
		RecurrencePeriodQuarterly,
		RecurrencePeriodAnnual,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid recurrence period").
			WithHint("Please provide a valid recurrence period").
			WithReportableDetails(map[string]any{
				"allowed":  allowed,
				"provided": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NextRecurringDate advances start by exactly one recurrence period.
// Catch-up across several missed periods is done by calling this repeatedly,
// one period at a time, so every missed period keeps its own period key.
// This leverages clamped date math that properly handles month-boundary
// issues (e.g. Jan 31 + monthly lands on Feb 28/29, not Mar 2).
func NextRecurringDate(start time.Time, period RecurrencePeriod) (time.Time, error) {
	switch period {
	case RecurrencePeriodMonthly:
		return AddClampedDate(start, 0, 1, 0), nil
	case RecurrencePeriodQuarterly:
		return AddClampedDate(start, 0, 3, 0), nil
	case RecurrencePeriodAnnual:
		return AddClampedDate(start, 1, 0, 0), nil
	default:
		return start, ierr.NewError("invalid recurrence period").
			WithHint("Please provide a valid recurrence period").
			WithReportableDetails(map[string]any{"provided": period}).
			Mark(ierr.ErrValidation)
	}
}

// AddClampedDate adds years, months and days to t, clamping the day of month
// to the last valid day instead of overflowing into the next month the way
// time.AddDate does.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Last valid day of the target month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d + days
	if newD > lastDay {
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
}
