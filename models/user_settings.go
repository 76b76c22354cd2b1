package models

import (
	"encoding/json"
	"time"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserSettings 用户配置，整体作为一个JSON值存储
type UserSettings struct {
	UserID    string    `gorm:"type:varchar(50);primaryKey" json:"userId"`
	Settings  string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SettingsValue 用户配置值，读取时与默认值合并
type SettingsValue struct {
	Version       int                  `json:"version"`
	Role          string               `json:"role"`
	AutoJournal   AutoJournalSettings  `json:"autoJournal"`
	Notifications NotificationSettings `json:"notifications"`
	UI            UISettings           `json:"ui"`
}

// AutoJournalSettings 日报自动生成配置
type AutoJournalSettings struct {
	Enabled              bool   `json:"enabled"`
	OnTaskComplete       bool   `json:"onTaskComplete"`
	ScheduleEnabled      bool   `json:"scheduleEnabled"`
	ScheduleTime         string `json:"scheduleTime"` // HH:MM，本地时间
	TemplateName         string `json:"templateName"`
	IncludeTimeSpent     bool   `json:"includeTimeSpent"`
	IncludeProject       bool   `json:"includeProject"`
	IncludeTags          bool   `json:"includeTags"`
	AIRemark             bool   `json:"aiRemark"`
	OverwriteManualEdits bool   `json:"overwriteManualEdits"`
}

// NotificationSettings 通知配置
type NotificationSettings struct {
	DueSoonReminder bool `json:"dueSoonReminder"`
	DailySummary    bool `json:"dailySummary"`
}

// UISettings 界面配置
type UISettings struct {
	Theme           string `json:"theme"`
	Language        string `json:"language"`
	DefaultTaskView string `json:"defaultTaskView"`
}

// DefaultSettings 返回默认配置
func DefaultSettings() SettingsValue {
	return SettingsValue{
		Version: 1,
		Role:    RoleUser,
		AutoJournal: AutoJournalSettings{
			Enabled:              true,
			OnTaskComplete:       false,
			ScheduleEnabled:      false,
			ScheduleTime:         "23:55",
			TemplateName:         "daily",
			IncludeTimeSpent:     true,
			IncludeProject:       true,
			IncludeTags:          false,
			AIRemark:             false,
			OverwriteManualEdits: true,
		},
		Notifications: NotificationSettings{
			DueSoonReminder: true,
			DailySummary:    false,
		},
		UI: UISettings{
			Theme:           "system",
			Language:        "zh-CN",
			DefaultTaskView: "list",
		},
	}
}

// DecodeSettings 从JSON解出配置，缺失字段取默认值
func DecodeSettings(raw string) SettingsValue {
	value := DefaultSettings()
	if raw == "" {
		return value
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return DefaultSettings()
	}
	if value.Role == "" {
		value.Role = RoleUser
	}
	return value
}

// EncodeSettings 序列化配置
func EncodeSettings(value SettingsValue) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
