package models

import "time"

// TimeEntry 计时记录，计时开始时创建，暂停/结束时关闭
type TimeEntry struct {
	ID          string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	TaskID      string     `gorm:"type:varchar(50);index" json:"taskId"`
	CreatedByID string     `gorm:"type:varchar(50);index:idx_time_entries_user_start" json:"createdById"`
	StartTime   time.Time  `gorm:"index:idx_time_entries_user_start" json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Duration    *int       `json:"duration"` // 秒数，向下取整
	Description string     `gorm:"type:varchar(500)" json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}
