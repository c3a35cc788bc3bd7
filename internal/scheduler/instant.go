package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Accepted wire layouts. Layouts without an offset are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 timestamp and normalizes it to UTC.
func ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", ErrInvalidInterval)
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 timestamp", ErrInvalidInterval, raw)
}

func parseInterval(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := ParseInstant(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseInstant(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := checkInterval(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func checkInterval(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end time %s must be after start time %s",
			ErrInvalidInterval, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}
