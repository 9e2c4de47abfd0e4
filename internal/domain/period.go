package domain

import (
	"strings"
	"time"
)

// Period is a bounded lookback window for portfolio history.
type Period string

const (
	Period1M Period = "1M"
	Period3M Period = "3M"
	Period6M Period = "6M"
	Period1Y Period = "1Y"
	Period2Y Period = "2Y"
)

// periodLookbacks maps each period to its lookback in calendar months.
var periodLookbacks = map[Period]int{
	Period1M: 1,
	Period3M: 3,
	Period6M: 6,
	Period1Y: 12,
	Period2Y: 24,
}

// ParsePeriod validates a period token. Unknown tokens fail with
// InvalidPeriodError rather than silently defaulting.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := periodLookbacks[p]; !ok {
		return "", &InvalidPeriodError{Period: s}
	}
	return p, nil
}

// Start returns the inclusive start of the period's window relative to now.
func (p Period) Start(now time.Time) time.Time {
	months := periodLookbacks[p]
	return now.AddDate(0, -months, 0)
}

// ValidPeriods returns the supported period tokens as a comma-separated list.
func ValidPeriods() string {
	return "1M, 3M, 6M, 1Y, 2Y"
}
