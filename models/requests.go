package models

import (
	"fmt"
	"time"
)

// CreateTaskRequest 创建任务请求结构体
type CreateTaskRequest struct {
	Title             string             `json:"title" binding:"required"`
	Description       string             `json:"description"`
	Type              string             `json:"type"`
	Status            string             `json:"status"`
	Priority          *string            `json:"priority"`
	DueDate           *time.Time         `json:"dueDate"`
	ProjectID         *string            `json:"projectId"`
	TagIDs            []string           `json:"tagIds"`
	IsRecurring       bool               `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
}

// Validate 校验并填充默认值
func (r *CreateTaskRequest) Validate() error {
	if r.Type == "" {
		r.Type = TaskTypeNormal
	}
	if r.Status == "" {
		r.Status = TaskStatusTodo
	}
	if !ValidTaskStatus(r.Status) {
		return fmt.Errorf("无效的任务状态: %s", r.Status)
	}
	if r.Priority != nil && !ValidTaskPriority(*r.Priority) {
		return fmt.Errorf("无效的优先级: %s", *r.Priority)
	}
	if r.IsRecurring {
		if r.RecurrencePattern == nil {
			return fmt.Errorf("重复任务必须提供重复规则")
		}
		if err := r.RecurrencePattern.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateTaskRequest 更新任务请求结构体，状态变更走单独接口
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	ProjectID   *string    `json:"projectId"`
	TagIDs      *[]string  `json:"tagIds"`
}

// ListTasksRequest 任务列表查询参数
type ListTasksRequest struct {
	Status        string     `form:"status"`
	Priority      string     `form:"priority"`
	ProjectID     string     `form:"projectId"`
	Search        string     `form:"search"`
	DueBefore     *time.Time `form:"dueBefore" time_format:"2006-01-02T15:04:05Z07:00"`
	DueAfter      *time.Time `form:"dueAfter" time_format:"2006-01-02T15:04:05Z07:00"`
	CompletedFrom *time.Time `form:"completedFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	CompletedTo   *time.Time `form:"completedTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit         int        `form:"limit"`
	Cursor        string     `form:"cursor"`
}

// UpdateTaskStatusRequest 状态变更请求结构体
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// RestartTaskRequest 重启任务请求结构体
type RestartTaskRequest struct {
	Status string `json:"status"` // 缺省回到 todo
}

// SetRecurringRequest 设置重复规则请求结构体
type SetRecurringRequest struct {
	IsRecurring bool               `json:"isRecurring"`
	Pattern     *RecurrencePattern `json:"pattern"`
}

// StatsRangeRequest 统计时间范围查询参数
type StatsRangeRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CreateProjectRequest 创建项目请求结构体
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// UpdateProjectRequest 更新项目请求结构体
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// BatchProjectRequest 项目批量操作请求结构体
type BatchProjectRequest struct {
	Ids       []string `json:"ids" binding:"required"`
	Operation string   `json:"operation" binding:"required"` // archive, unarchive, delete
}

// Validate 校验批量操作类型
func (r *BatchProjectRequest) Validate() error {
	switch r.Operation {
	case "archive", "unarchive", "delete":
		return nil
	}
	return fmt.Errorf("无效的批量操作: %s", r.Operation)
}

// CreateNoteRequest 创建笔记请求结构体
type CreateNoteRequest struct {
	Title     string   `json:"title" binding:"required"`
	Content   string   `json:"content"`
	Summary   string   `json:"summary"`
	IsPinned  bool     `json:"isPinned"`
	ProjectID *string  `json:"projectId"`
	TagIDs    []string `json:"tagIds"`
}

// UpdateNoteRequest 更新笔记请求结构体
type UpdateNoteRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Summary   *string   `json:"summary"`
	IsPinned  *bool     `json:"isPinned"`
	ProjectID *string   `json:"projectId"`
	TagIDs    *[]string `json:"tagIds"`
}

// BatchNoteRequest 笔记批量操作请求结构体
type BatchNoteRequest struct {
	Ids       []string `json:"ids" binding:"required"`
	Operation string   `json:"operation" binding:"required"` // archive, unarchive, delete, move
	ProjectID *string  `json:"projectId"`                    // move 时的目标项目
}

// Validate 校验批量操作类型
func (r *BatchNoteRequest) Validate() error {
	switch r.Operation {
	case "archive", "unarchive", "delete":
		return nil
	case "move":
		if r.ProjectID == nil {
			return fmt.Errorf("move 操作必须提供目标项目")
		}
		return nil
	}
	return fmt.Errorf("无效的批量操作: %s", r.Operation)
}

// CreateJournalRequest 创建日志请求结构体
type CreateJournalRequest struct {
	EntryDate    time.Time `json:"entryDate" binding:"required"`
	Content      string    `json:"content"`
	TemplateName string    `json:"templateName"`
}

// UpdateJournalRequest 更新日志请求结构体
type UpdateJournalRequest struct {
	Content      *string `json:"content"`
	TemplateName *string `json:"templateName"`
}

// AutoGenerateJournalRequest 手动触发日报生成请求结构体
type AutoGenerateJournalRequest struct {
	Date         *time.Time `json:"date"`
	TemplateName string     `json:"templateName"`
	Force        bool       `json:"force"`
}

// BatchDeleteRequest 批量删除请求结构体
type BatchDeleteRequest struct {
	Ids []string `json:"ids" binding:"required"`
}

// CreateTagRequest 创建标签请求结构体
type CreateTagRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Validate 校验并填充默认值
func (r *CreateTagRequest) Validate() error {
	if r.Type == "" {
		r.Type = TagTypeCustom
	}
	if !ValidTagType(r.Type) {
		return fmt.Errorf("无效的标签类型: %s", r.Type)
	}
	return nil
}

// UpdateTagRequest 更新标签请求结构体
type UpdateTagRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// CreateTestUserRequest 创建测试用户请求结构体
type CreateTestUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
