package models

import "time"

// TaskStatusHistory 任务状态变更记录，只增不改
type TaskStatusHistory struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	TaskID      string    `gorm:"type:varchar(50);index" json:"taskId"`
	FromStatus  string    `gorm:"type:varchar(20)" json:"fromStatus"` // 创建时为空
	ToStatus    string    `gorm:"type:varchar(20)" json:"toStatus"`
	Note        string    `gorm:"type:varchar(500)" json:"note"`
	CreatedByID string    `gorm:"type:varchar(50);index" json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (TaskStatusHistory) TableName() string {
	return "task_status_histories"
}
