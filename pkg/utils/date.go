package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// NormalizeToDateOnly returns the UTC calendar date of t at midnight.
func NormalizeToDateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts nights between two dates after normalization.
// The result is zero or negative when checkOut is not after checkIn.
func NightsBetween(checkIn, checkOut time.Time) int {
	diff := NormalizeToDateOnly(checkOut).Sub(NormalizeToDateOnly(checkIn))
	return int(math.Ceil(diff.Hours() / day.Hours()))
}

// FormatDateStamp renders t as YYYY-MM-DD in UTC.
func FormatDateStamp(t time.Time) string {
	return NormalizeToDateOnly(t).Format(DateLayout)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the normalized date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return NormalizeToDateOnly(t), nil
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
	}

	return NormalizeToDateOnly(t), nil
}
