package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayStart(t *testing.T) {
	assert := assert.New(t)

	moment := time.Date(2026, 8, 29, 23, 55, 42, 99, time.Local)
	start := DayStart(moment)
	assert.Equal(2026, start.Year())
	assert.Equal(time.August, start.Month())
	assert.Equal(29, start.Day())
	assert.Equal(0, start.Hour())
	assert.Equal(0, start.Minute())
	assert.Equal(0, start.Second())
}

func TestDayBounds(t *testing.T) {
	assert := assert.New(t)

	moment := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)
	start, end := DayBounds(moment)
	assert.Equal(DayStart(moment), start)
	assert.Equal(start.AddDate(0, 0, 1), end)
	assert.True(moment.After(start) || moment.Equal(start))
	assert.True(moment.Before(end))
}

func TestSameDay(t *testing.T) {
	assert := assert.New(t)

	a := time.Date(2026, 8, 29, 0, 0, 1, 0, time.Local)
	b := time.Date(2026, 8, 29, 23, 59, 59, 0, time.Local)
	c := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)

	assert.True(SameDay(a, b))
	assert.False(SameDay(b, c))
}
