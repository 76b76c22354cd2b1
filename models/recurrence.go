package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// 重复类型
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// RecurrencePattern 重复规则，存储为任务上的JSON文本，只在任务服务内解码
type RecurrencePattern struct {
	Type     string `json:"type"`           // daily, weekly, monthly, yearly
	Interval int    `json:"interval"`       // 间隔数，>=1
	Time     string `json:"time,omitempty"` // HH:MM，可选的到期时刻
}

// Validate 校验重复规则
func (p *RecurrencePattern) Validate() error {
	switch p.Type {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
	default:
		return fmt.Errorf("无效的重复类型: %s", p.Type)
	}
	if p.Interval < 1 {
		return fmt.Errorf("重复间隔必须大于0")
	}
	if p.Time != "" {
		if _, err := time.Parse("15:04", p.Time); err != nil {
			return fmt.Errorf("无效的时间格式: %s", p.Time)
		}
	}
	return nil
}

// NextFrom 从给定时刻推算下一次到期时间。
// 日/周按固定时长推算，月/年按日历字段推算以处理月末和闰年。
func (p *RecurrencePattern) NextFrom(now time.Time) time.Time {
	var next time.Time
	switch p.Type {
	case RecurrenceDaily:
		next = now.Add(time.Duration(p.Interval) * 24 * time.Hour)
	case RecurrenceWeekly:
		next = now.Add(time.Duration(p.Interval) * 7 * 24 * time.Hour)
	case RecurrenceMonthly:
		next = now.AddDate(0, p.Interval, 0)
	case RecurrenceYearly:
		next = now.AddDate(p.Interval, 0, 0)
	default:
		next = now
	}
	if p.Time != "" {
		if clock, err := time.Parse("15:04", p.Time); err == nil {
			next = time.Date(next.Year(), next.Month(), next.Day(),
				clock.Hour(), clock.Minute(), 0, 0, next.Location())
		}
	}
	return next
}

// DecodeRecurrencePattern 从JSON解出重复规则
func DecodeRecurrencePattern(raw string) (*RecurrencePattern, error) {
	var pattern RecurrencePattern
	if err := json.Unmarshal([]byte(raw), &pattern); err != nil {
		return nil, fmt.Errorf("无效的重复规则: %v", err)
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return &pattern, nil
}

// EncodeRecurrencePattern 序列化重复规则
func EncodeRecurrencePattern(pattern *RecurrencePattern) (string, error) {
	if err := pattern.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(pattern)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
