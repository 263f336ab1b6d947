package utils

import (
	"fmt"
	"time"
)

const defaultStatsWindow = 7 * 24 * time.Hour

// IsValidInterval reports whether interval names a ClickHouse toStartOf* bucket.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}

// ParseTimeRange parses optional RFC3339 start/end query values. Missing
// values default to the last seven days ending now.
func ParseTimeRange(startParam, endParam string, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if endParam != "" {
		t, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		end = t.UTC()
	}

	start := end.Add(-defaultStatsWindow)
	if startParam != "" {
		t, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		start = t.UTC()
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("'start' must not be after 'end'")
	}
	return start, end, nil
}
