package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayFloor(t *testing.T) {
	ts := time.Date(2026, 3, 10, 17, 45, 30, 123, time.Local)
	floored := DayFloor(ts)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), floored)
	// Flooring is idempotent.
	assert.Equal(t, floored, DayFloor(floored))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 10, 0, 0, 1, 0, time.Local)
	night := time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local)
	nextDay := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)

	assert.True(t, SameDay(morning, night))
	assert.False(t, SameDay(night, nextDay))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 10, 23, 0, 0, 0, time.Local)
	b := time.Date(2026, 3, 11, 1, 0, 0, 0, time.Local)

	// Two hours apart on the clock, one whole calendar day apart.
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))

	c := a.AddDate(0, 0, 7)
	assert.Equal(t, 7, DaysBetween(a, c))
}

func TestDaysBetween_AcrossDSTTransitions(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)
	defer func(prev *time.Location) { time.Local = prev }(time.Local)
	time.Local = ny

	// Spring forward: 2025-03-09 is 23 hours long in New York, so a raw
	// midnight-to-midnight subtraction yields less than 24h.
	before := time.Date(2025, 3, 9, 8, 0, 0, 0, ny)
	after := time.Date(2025, 3, 10, 8, 0, 0, 0, ny)
	assert.Equal(t, 1, DaysBetween(before, after))
	assert.Equal(t, 2, DaysBetween(time.Date(2025, 3, 8, 20, 0, 0, 0, ny), after))

	// Fall back: 2025-11-02 is 25 hours long.
	assert.Equal(t, 1, DaysBetween(
		time.Date(2025, 11, 2, 8, 0, 0, 0, ny),
		time.Date(2025, 11, 3, 8, 0, 0, 0, ny),
	))
}

func TestNextDay(t *testing.T) {
	ts := time.Date(2026, 3, 10, 18, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local), NextDay(ts))
}

func TestFormatAndParseDay(t *testing.T) {
	ts := time.Date(2026, 3, 10, 18, 0, 0, 0, time.Local)
	assert.Equal(t, "2026-03-10", FormatDay(ts))

	parsed, err := ParseDay("2026-03-10")
	assert.NoError(t, err)
	assert.Equal(t, DayFloor(ts), parsed)

	_, err = ParseDay("10.03.2026")
	assert.Error(t, err)
}

func TestIsTodayAndYesterday(t *testing.T) {
	assert.True(t, IsToday(time.Now()))
	assert.True(t, IsYesterday(time.Now().AddDate(0, 0, -1)))
	assert.False(t, IsYesterday(time.Now()))
}
