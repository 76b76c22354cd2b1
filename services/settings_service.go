package services

import (
	"context"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"
)

const settingsCacheTTL = 10 * time.Minute

// SettingsService 用户配置服务，配置整体作为一个JSON值读写，读取时与默认值合并
type SettingsService struct{}

func NewSettingsService() *SettingsService {
	return &SettingsService{}
}

func settingsCacheKey(uid string) string {
	return "settings:" + uid
}

// Get 读取用户配置，优先走Redis缓存，无记录时返回默认配置
func (s *SettingsService) Get(uid string) models.SettingsValue {
	ctx := context.Background()
	key := settingsCacheKey(uid)

	if config.RedisClient != nil {
		if raw, err := config.RedisClient.Get(ctx, key).Result(); err == nil && raw != "" {
			return models.DecodeSettings(raw)
		}
	}

	var row models.UserSettings
	if err := config.DB.Where("user_id = ?", uid).First(&row).Error; err != nil {
		return models.DefaultSettings()
	}

	value := models.DecodeSettings(row.Settings)

	if config.RedisClient != nil {
		if err := config.RedisClient.Set(ctx, key, row.Settings, settingsCacheTTL).Err(); err != nil {
			config.Logger.Debugw("配置缓存写入失败", "error", err, "uid", uid)
		}
	}
	return value
}

// Update 保存用户配置并使缓存失效。角色字段不接受客户端修改。
func (s *SettingsService) Update(uid string, value models.SettingsValue) (models.SettingsValue, error) {
	if value.AutoJournal.ScheduleTime != "" {
		if _, err := time.Parse("15:04", value.AutoJournal.ScheduleTime); err != nil {
			return value, BadRequest("无效的定时时间，应为 HH:MM 格式")
		}
	} else {
		value.AutoJournal.ScheduleTime = models.DefaultSettings().AutoJournal.ScheduleTime
	}

	current := s.Get(uid)
	value.Role = current.Role
	value.Version = current.Version
	if value.Version == 0 {
		value.Version = 1
	}

	raw, err := models.EncodeSettings(value)
	if err != nil {
		return value, Internal("配置序列化失败", err)
	}

	row := models.UserSettings{UserID: uid, Settings: raw}
	if err := config.DB.Save(&row).Error; err != nil {
		return value, Internal("配置保存失败", err)
	}

	if config.RedisClient != nil {
		if err := config.RedisClient.Del(context.Background(), settingsCacheKey(uid)).Err(); err != nil {
			config.Logger.Debugw("配置缓存失效失败", "error", err, "uid", uid)
		}
	}
	return value, nil
}

// UserScheduleEntry 开启了定时日报的用户及其配置
type UserScheduleEntry struct {
	UserID string
	Value  models.SettingsValue
}

// ListScheduled 列出开启了定时日报生成的用户
func (s *SettingsService) ListScheduled() ([]UserScheduleEntry, error) {
	var rows []models.UserSettings
	if err := config.DB.Find(&rows).Error; err != nil {
		return nil, Internal("查询用户配置失败", err)
	}

	entries := make([]UserScheduleEntry, 0, len(rows))
	for _, row := range rows {
		value := models.DecodeSettings(row.Settings)
		if value.AutoJournal.Enabled && value.AutoJournal.ScheduleEnabled {
			entries = append(entries, UserScheduleEntry{UserID: row.UserID, Value: value})
		}
	}
	return entries, nil
}
