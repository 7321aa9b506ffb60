package utils

import (
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// ParseOptionalInt returns nil for an empty value and an error for a malformed one.
func ParseOptionalInt(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AtClock places a clock offset on the calendar day of day, in day's location.
// Wall-clock based, so DST transitions do not shift the result.
func AtClock(day time.Time, clock time.Duration) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, int(clock/time.Minute), 0, 0, day.Location())
}
