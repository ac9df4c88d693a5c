package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidRemindAt = errors.New("model: invalid reminder time")
	ErrInvalidWhen     = errors.New("model: unrecognized time expression")
)

func ValidateRemindAt(unix int64) error {
	if unix <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRemindAt, unix)
	}
	return nil
}

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseWhen resolves a reminder time expression relative to now. Supported
// forms: relative durations ("+90m", "in 2h", "45m"), a clock time ("09:30",
// today or tomorrow when already passed), "tomorrow 09:00", absolute dates
// ("2026-02-09 13:00", RFC3339) and raw unix seconds.
func ParseWhen(raw string, now time.Time) (time.Time, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidWhen)
	}

	rel := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(v, "in "), "+"))
	if d, err := time.ParseDuration(rel); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("%w: duration must be positive", ErrInvalidWhen)
		}
		return now.Add(d), nil
	}

	if strings.HasPrefix(v, "tomorrow") {
		clock := strings.TrimSpace(strings.TrimPrefix(v, "tomorrow"))
		if clock == "" {
			clock = "09:00"
		}
		h, m, err := parseClock(clock)
		if err != nil {
			return time.Time{}, err
		}
		y, mo, d := now.AddDate(0, 0, 1).Date()
		return time.Date(y, mo, d, h, m, 0, 0, now.Location()), nil
	}

	if h, m, err := parseClock(v); err == nil {
		y, mo, d := now.Date()
		at := time.Date(y, mo, d, h, m, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}

	for _, layout := range whenLayouts {
		if at, err := time.ParseInLocation(layout, strings.ToUpper(v), now.Location()); err == nil {
			return at, nil
		}
	}

	if unix, err := strconv.ParseInt(v, 10, 64); err == nil && unix > 0 {
		return time.Unix(unix, 0).In(now.Location()), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWhen, raw)
}

func parseClock(v string) (int, int, error) {
	at, err := time.Parse("15:04", v)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWhen, v)
	}
	return at.Hour(), at.Minute(), nil
}
