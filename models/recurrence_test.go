package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecurrencePatternValidate(t *testing.T) {
	assert := assert.New(t)

	valid := RecurrencePattern{Type: RecurrenceDaily, Interval: 1}
	assert.Nil(valid.Validate())

	badType := RecurrencePattern{Type: "hourly", Interval: 1}
	assert.NotNil(badType.Validate())

	badInterval := RecurrencePattern{Type: RecurrenceWeekly, Interval: 0}
	assert.NotNil(badInterval.Validate())

	badTime := RecurrencePattern{Type: RecurrenceDaily, Interval: 1, Time: "25:00"}
	assert.NotNil(badTime.Validate())
}

func TestNextFromFixedDuration(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	daily := RecurrencePattern{Type: RecurrenceDaily, Interval: 3}
	assert.Equal(now.Add(72*time.Hour), daily.NextFrom(now))

	weekly := RecurrencePattern{Type: RecurrenceWeekly, Interval: 2}
	assert.Equal(now.Add(2*7*24*time.Hour), weekly.NextFrom(now))
}

func TestNextFromCalendarRollover(t *testing.T) {
	assert := assert.New(t)

	// 1月31日加一个月按日历字段归一
	jan31 := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	monthly := RecurrencePattern{Type: RecurrenceMonthly, Interval: 1}
	assert.Equal(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), monthly.NextFrom(jan31))

	// 闰日加一年
	feb29 := time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC)
	yearly := RecurrencePattern{Type: RecurrenceYearly, Interval: 1}
	assert.Equal(time.Date(2029, 3, 1, 9, 0, 0, 0, time.UTC), yearly.NextFrom(feb29))
}

func TestNextFromTimeOverride(t *testing.T) {
	assert := assert.New(t)

	now := time.Date(2026, 8, 29, 18, 45, 30, 0, time.UTC)
	daily := RecurrencePattern{Type: RecurrenceDaily, Interval: 1, Time: "09:00"}

	next := daily.NextFrom(now)
	assert.Equal(30, next.Day())
	assert.Equal(9, next.Hour())
	assert.Equal(0, next.Minute())
	assert.Equal(0, next.Second())
}

func TestRecurrencePatternCodec(t *testing.T) {
	assert := assert.New(t)

	pattern := RecurrencePattern{Type: RecurrenceMonthly, Interval: 2, Time: "08:00"}
	raw, err := EncodeRecurrencePattern(&pattern)
	assert.Nil(err)

	decoded, err := DecodeRecurrencePattern(raw)
	assert.Nil(err)
	assert.Equal(pattern, *decoded)

	_, err = DecodeRecurrencePattern(`{"type":"hourly","interval":1}`)
	assert.NotNil(err)

	_, err = DecodeRecurrencePattern("not json")
	assert.NotNil(err)
}
