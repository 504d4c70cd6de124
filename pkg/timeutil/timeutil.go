// Package timeutil provides calendar-day arithmetic for the progression
// engine. Streaks and daily task rows are keyed by server-local midnight,
// so every day-boundary computation in the engine goes through this package.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// DayFloor truncates a time to midnight in server-local time.
// This is the canonical "calendar day" used for streaks and daily tasks.
func DayFloor(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// Today returns the current calendar day (server-local midnight).
func Today() time.Time {
	return DayFloor(time.Now())
}

// SameDay reports whether two times fall on the same server-local calendar day.
func SameDay(a, b time.Time) bool {
	return DayFloor(a).Equal(DayFloor(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Both times are floored to midnight and their dates re-anchored in UTC
// before subtracting, so the count never depends on wall-clock hours: a
// 23-hour or 25-hour local day around a DST shift still counts as one day.
// Positive when b is after a, negative when before.
func DaysBetween(a, b time.Time) int {
	fa := DayFloor(a)
	fb := DayFloor(b)
	ua := time.Date(fa.Year(), fa.Month(), fa.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(fb.Year(), fb.Month(), fb.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DaysSince returns the number of whole calendar days from t until now.
func DaysSince(t time.Time) int {
	return DaysBetween(t, time.Now())
}

// IsToday reports whether t falls on the current calendar day.
func IsToday(t time.Time) bool {
	return SameDay(t, time.Now())
}

// IsYesterday reports whether t falls on the previous calendar day.
func IsYesterday(t time.Time) bool {
	return DaysSince(t) == 1
}

// NextDay returns the midnight following the given time's calendar day.
func NextDay(t time.Time) time.Time {
	return DayFloor(t).AddDate(0, 0, 1)
}

// FormatDay formats a time as its calendar day in YYYY-MM-DD form.
func FormatDay(t time.Time) string {
	return DayFloor(t).Format("2006-01-02")
}

// ParseDay parses a YYYY-MM-DD string as a server-local calendar day.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}
