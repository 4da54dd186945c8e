package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRecurringDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		period RecurrencePeriod
		want   time.Time
	}{
		{
			name:   "monthly advances one month",
			start:  date(2024, 1, 1),
			period: RecurrencePeriodMonthly,
			want:   date(2024, 2, 1),
		},
		{
			name:   "monthly clamps to leap february",
			start:  date(2024, 1, 31),
			period: RecurrencePeriodMonthly,
			want:   date(2024, 2, 29),
		},
		{
			name:   "monthly clamps to non-leap february",
			start:  date(2023, 1, 31),
			period: RecurrencePeriodMonthly,
			want:   date(2023, 2, 28),
		},
		{
			name:   "monthly across year boundary",
			start:  date(2024, 12, 15),
			period: RecurrencePeriodMonthly,
			want:   date(2025, 1, 15),
		},
		{
			name:   "quarterly advances three months",
			start:  date(2024, 1, 1),
			period: RecurrencePeriodQuarterly,
			want:   date(2024, 4, 1),
		},
		{
			name:   "quarterly clamps day of month",
			start:  date(2024, 11, 30),
			period: RecurrencePeriodQuarterly,
			want:   date(2025, 2, 28),
		},
		{
			name:   "annual advances one year",
			start:  date(2024, 3, 10),
			period: RecurrencePeriodAnnual,
			want:   date(2025, 3, 10),
		},
		{
			name:   "annual from leap day clamps",
			start:  date(2024, 2, 29),
			period: RecurrencePeriodAnnual,
			want:   date(2025, 2, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRecurringDate(tt.start, tt.period)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestNextRecurringDateInvalidPeriod(t *testing.T) {
	_, err := NextRecurringDate(date(2024, 1, 1), RecurrencePeriod("weekly"))
	assert.Error(t, err)
}

func TestNextRecurringDatePreservesTimeOfDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	got, err := NextRecurringDate(start, RecurrencePeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), got)
}
