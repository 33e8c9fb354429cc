package types

import (
	"math"
	"time"

	"cloud.google.com/go/civil"
)

// NewDate builds a date value suitable for binding to a DATE column.
func NewDate(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

// NewTime builds a time of day suitable for binding to a TIME column.
func NewTime(hour, minute, second int) civil.Time {
	return civil.Time{Hour: hour, Minute: minute, Second: second}
}

// NewTimestamp builds a UTC timestamp suitable for binding to a DATETIME
// column.
func NewTimestamp(year int, month time.Month, day, hour, minute, second int) time.Time {
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}

func fromTicks(ticks float64) time.Time {
	sec, frac := math.Modf(ticks)
	return time.Unix(int64(sec), int64(frac*1e9)).Local()
}

// DateFromTicks returns the local date ticks seconds after the Unix epoch.
func DateFromTicks(ticks float64) civil.Date {
	return civil.DateOf(fromTicks(ticks))
}

// TimeFromTicks returns the local time of day ticks seconds after the Unix
// epoch.
func TimeFromTicks(ticks float64) civil.Time {
	return civil.TimeOf(fromTicks(ticks))
}

// TimestampFromTicks returns the local instant ticks seconds after the Unix
// epoch.
func TimestampFromTicks(ticks float64) time.Time {
	return fromTicks(ticks)
}

// Binary returns s as a value bound to a BLOB.
func Binary(s string) []byte {
	return []byte(s)
}
