package models

import "time"

// TaskListResponse 任务列表响应结构体
type TaskListResponse struct {
	Items      []Task `json:"items"`
	NextCursor string `json:"nextCursor"`
}

// NoteListResponse 笔记列表响应结构体
type NoteListResponse struct {
	Items      []Note `json:"items"`
	NextCursor string `json:"nextCursor"`
}

// JournalListResponse 日志列表响应结构体
type JournalListResponse struct {
	Items      []Journal `json:"items"`
	NextCursor string    `json:"nextCursor"`
}

// TaskStatsResponse 任务统计响应结构体
type TaskStatsResponse struct {
	TotalTasks     int64            `json:"totalTasks"`
	CompletedTasks int64            `json:"completedTasks"`
	CompletionRate float64          `json:"completionRate"`
	StatusCounts   map[string]int64 `json:"statusCounts"`
	PriorityCounts map[string]int64 `json:"priorityCounts"`
	TotalTimeSpent int64            `json:"totalTimeSpent"`
}

// ProjectStatsResponse 项目统计响应结构体
type ProjectStatsResponse struct {
	TaskCount      int64            `json:"taskCount"`
	NoteCount      int64            `json:"noteCount"`
	CompletedTasks int64            `json:"completedTasks"`
	CompletionRate float64          `json:"completionRate"`
	StatusCounts   map[string]int64 `json:"statusCounts"`
}

// NoteStatsResponse 笔记统计响应结构体
type NoteStatsResponse struct {
	Total       int64 `json:"total"`
	Pinned      int64 `json:"pinned"`
	Archived    int64 `json:"archived"`
	LinkedTasks int64 `json:"linkedTasks"`
}

// JournalStatsResponse 日志统计响应结构体
type JournalStatsResponse struct {
	TotalEntries     int64 `json:"totalEntries"`
	EntriesThisMonth int64 `json:"entriesThisMonth"`
	CurrentStreak    int   `json:"currentStreak"`
	LongestStreak    int   `json:"longestStreak"`
}

// JournalTimelineEntry 日志时间线条目
type JournalTimelineEntry struct {
	ID            string    `json:"id"`
	EntryDate     time.Time `json:"entryDate"`
	TemplateName  string    `json:"templateName"`
	ContentLength int       `json:"contentLength"`
}

// JournalTemplateStat 模板使用统计
type JournalTemplateStat struct {
	TemplateName string `json:"templateName"`
	Count        int64  `json:"count"`
}

// WritingHabitsResponse 写作习惯统计响应结构体
type WritingHabitsResponse struct {
	Days          int     `json:"days"`
	ActiveDays    int     `json:"activeDays"`
	CurrentStreak int     `json:"currentStreak"`
	LongestStreak int     `json:"longestStreak"`
	AverageLength float64 `json:"averageLength"`
}

// TagStatsItem 单个标签的使用统计
type TagStatsItem struct {
	Tag       Tag   `json:"tag"`
	TaskCount int64 `json:"taskCount"`
	NoteCount int64 `json:"noteCount"`
}

// AutoGenerateResult 日报生成结果。Success=false 且无错误时表示按配置跳过。
type AutoGenerateResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	JournalID  string `json:"journalId,omitempty"`
	TasksCount int    `json:"tasksCount"`
}

// BatchOperationResponse 批量操作响应结构体
type BatchOperationResponse struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
