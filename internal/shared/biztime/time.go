// Package biztime centralizes time handling. All storage and transport
// use UTC; implicit local timezone is prohibited.
package biztime

import (
	"fmt"
	"time"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToUTC converts a time (any timezone) to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// FormatMetadataTime formats a UTC time for storage in metadata using RFC3339 format.
func FormatMetadataTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseMetadataTime parses a timestamp from metadata string (RFC3339 format).
func ParseMetadataTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid metadata timestamp format %q: %w", s, err)
	}
	return t, nil
}

const referenceTimestampLayout = "20060102_150405"

// ReferenceTimestamp formats a UTC time the way payment external
// references embed it (yyyymmdd_hhmmss).
func ReferenceTimestamp(t time.Time) string {
	return t.Format(referenceTimestampLayout)
}

// ParseReferenceTimestamp parses the timestamp segment of a payment
// external reference. The result is UTC.
func ParseReferenceTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(referenceTimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference timestamp %q: %w", s, err)
	}
	return t, nil
}
