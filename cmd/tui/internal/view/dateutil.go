package view

import (
	"time"
)

type Timeframe int

const (
	TimeframeAll       Timeframe = 0
	TimeframeThisMonth Timeframe = 1
	TimeframeLastMonth Timeframe = 2
	TimeframeThisYear  Timeframe = 3
)

var timeframes = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeThisYear}

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "All Time"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	}

	return "Unknown"
}

// DateRange returns the inclusive calendar dates covered by the timeframe,
// or nil bounds for TimeframeAll.
func (t Timeframe) DateRange(now time.Time) (*time.Time, *time.Time) {
	var start, end time.Time

	switch t {
	case TimeframeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case TimeframeLastMonth:
		start = time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case TimeframeThisYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return nil, nil
	}

	return &start, &end
}
