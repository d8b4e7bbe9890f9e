package server

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return strconv.Atoi(trimmed)
}

// parseOptionalTime accepts RFC3339 or a bare date. A bare date used as an
// exclusive upper bound moves to the start of the following day.
func parseOptionalTime(value string, exclusiveEnd bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		parsed = parsed.UTC()
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if exclusiveEnd {
			parsed = parsed.AddDate(0, 0, 1)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}
