package server

import (
	"errors"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// parseRequiredRange reads date_from/date_to. KPI aggregations always need
// both bounds; entry listings use parseOptionalTime directly instead.
func parseRequiredRange(from, to string) (time.Time, time.Time, error) {
	parsedFrom, err := parseOptionalTime(from, false)
	if err != nil || parsedFrom == nil {
		return time.Time{}, time.Time{}, newValidationError("date_from", "invalid_date_from", "invalid date_from")
	}
	parsedTo, err := parseOptionalTime(to, true)
	if err != nil || parsedTo == nil {
		return time.Time{}, time.Time{}, newValidationError("date_to", "invalid_date_to", "invalid date_to")
	}
	return *parsedFrom, *parsedTo, nil
}
