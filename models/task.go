package models

import (
	"time"
)

// 任务状态
const (
	TaskStatusIdea       = "idea"
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusWaiting    = "waiting"
	TaskStatusDone       = "done"
	TaskStatusArchived   = "archived"
)

// 任务类型
const (
	TaskTypeNormal   = "normal"
	TaskTypeDeadline = "deadline"
	TaskTypeIdea     = "idea"
)

// 任务优先级
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// ValidTaskStatus 校验任务状态取值
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusIdea, TaskStatusTodo, TaskStatusInProgress,
		TaskStatusWaiting, TaskStatusDone, TaskStatusArchived:
		return true
	}
	return false
}

// ValidTaskPriority 校验任务优先级取值
func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task 任务模型
type Task struct {
	ID                string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Title             string     `gorm:"type:varchar(200)" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	Type              string     `gorm:"type:varchar(20);default:normal" json:"type"`
	Status            string     `gorm:"type:varchar(20);index" json:"status"`
	Priority          *string    `gorm:"type:varchar(20)" json:"priority"`
	DueDate           *time.Time `json:"dueDate"`
	IsRecurring       bool       `gorm:"default:false" json:"isRecurring"`
	RecurrencePattern *string    `gorm:"type:text" json:"recurrencePattern"` // JSON，见 RecurrencePattern
	IsTimerActive     bool       `gorm:"default:false" json:"isTimerActive"`
	TimerStartedAt    *time.Time `json:"timerStartedAt"`
	TotalTimeSpent    int        `gorm:"default:0" json:"totalTimeSpent"` // 累计用时（秒）
	CompletedAt       *time.Time `json:"completedAt"`
	CompletedCount    int        `gorm:"default:0" json:"completedCount"`
	ProjectID         *string    `gorm:"type:varchar(50);index" json:"projectId"`
	ParentTaskID      *string    `gorm:"type:varchar(50)" json:"parentTaskId"`
	CreatedByID       string     `gorm:"type:varchar(50);index" json:"createdById"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	Project       *Project            `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Tags          []Tag               `gorm:"many2many:task_tags" json:"tags,omitempty"`
	TimeEntries   []TimeEntry         `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"timeEntries,omitempty"`
	StatusHistory []TaskStatusHistory `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"statusHistory,omitempty"`
}

// IsTerminal 任务是否处于终止状态（已完成/已归档）
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusDone || t.Status == TaskStatusArchived
}
