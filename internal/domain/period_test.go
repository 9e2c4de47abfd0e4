package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"1M", Period1M},
		{"3M", Period3M},
		{"6M", Period6M},
		{"1Y", Period1Y},
		{"2Y", Period2Y},
		{"1m", Period1M},
		{" 2y ", Period2Y},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, in := range []string{"", "5Y", "1W", "12M", "month", "1"} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := ParsePeriod(in)

			var pe *InvalidPeriodError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, in, pe.Period)
		})
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   time.Time
	}{
		{Period1M, time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)},
		{Period3M, time.Date(2023, 12, 15, 12, 0, 0, 0, time.UTC)},
		{Period6M, time.Date(2023, 9, 15, 12, 0, 0, 0, time.UTC)},
		{Period1Y, time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)},
		{Period2Y, time.Date(2022, 3, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Start(now))
		})
	}
}
