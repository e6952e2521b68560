package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// Timestamp renders t as RFC3339 in UTC, the format every API timestamp string uses
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DateStamp renders the UTC calendar date of t as YYYYMMDD for file names
func DateStamp(t time.Time) string {
	return t.UTC().Format("20060102")
}
