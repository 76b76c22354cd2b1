package utils

import "time"

// DayStart 归一到所在日的本地零点
func DayStart(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
}

// DayBounds 返回所在日的起止时刻 [start, end)
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := DayStart(t)
	return start, start.AddDate(0, 0, 1)
}

// SameDay 两个时刻是否落在同一本地日
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}
