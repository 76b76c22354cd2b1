package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/utils"

	"gorm.io/gorm"
)

// Trigger 日报生成的触发来源
type Trigger string

const (
	TriggerManual     Trigger = "manual"
	TriggerOnComplete Trigger = "on_complete"
	TriggerScheduled  Trigger = "scheduled"
)

// JournalService 日报生成服务：汇总当天完成的任务，按日期对日志做upsert
type JournalService struct {
	settings *SettingsService
	summary  *SummaryService // 可为nil，此时不生成结语
}

func NewJournalService(settings *SettingsService, summary *SummaryService) *JournalService {
	return &JournalService{settings: settings, summary: summary}
}

// GenerateInput 日报生成入参
type GenerateInput struct {
	UserID          string
	Date            time.Time // 零值表示当前时刻
	Force           bool
	TemplateName    string
	RespectSettings bool
	Trigger         Trigger
}

// AutoGenerate 汇总目标日完成的任务并生成（或覆盖）当天的日志。
// 配置关闭时返回 Success=false 的跳过结果，不算错误。
func (s *JournalService) AutoGenerate(in GenerateInput) (*models.AutoGenerateResult, error) {
	if in.UserID == "" {
		return nil, BadRequest("缺少用户ID")
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	value := s.settings.Get(in.UserID)
	cfg := value.AutoJournal

	if in.RespectSettings {
		if !cfg.Enabled {
			return &models.AutoGenerateResult{
				Success: false,
				Message: "日报自动生成已关闭",
			}, nil
		}
		switch in.Trigger {
		case TriggerOnComplete:
			if !cfg.OnTaskComplete {
				return &models.AutoGenerateResult{
					Success: false,
					Message: "已关闭任务完成时生成日报",
				}, nil
			}
		case TriggerScheduled:
			if !cfg.ScheduleEnabled {
				return &models.AutoGenerateResult{
					Success: false,
					Message: "已关闭定时生成日报",
				}, nil
			}
		}
	}

	dayStart, dayEnd := utils.DayBounds(date)

	var tasks []models.Task
	if err := config.DB.Preload("Project").Preload("Tags").
		Where("created_by_id = ? AND completed_at >= ? AND completed_at < ?",
			in.UserID, dayStart, dayEnd).
		Order("completed_at").Find(&tasks).Error; err != nil {
		return nil, Internal("查询完成任务失败", err)
	}

	templateName := in.TemplateName
	if templateName == "" {
		templateName = cfg.TemplateName
	}
	if templateName == "" {
		templateName = "daily"
	}

	content := renderJournal(dayStart, tasks, cfg)

	if s.summary != nil && cfg.AIRemark {
		remark, err := s.summary.ClosingRemark(context.Background(), tasks)
		if err != nil {
			config.Logger.Errorw("日报结语生成失败，跳过", "error", err, "uid", in.UserID)
		} else if remark != "" {
			content += "\n> " + remark + "\n"
		}
	}

	var journal models.Journal
	skipped := false
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("entry_date = ? AND created_by_id = ?", dayStart, in.UserID).
			First(&journal).Error
		if err == nil {
			if !in.Force && !cfg.OverwriteManualEdits && in.Trigger != TriggerManual {
				skipped = true
				return nil
			}
			// 生成内容整体替换当天日志
			journal.Content = content
			journal.TemplateName = templateName
			if err := tx.Save(&journal).Error; err != nil {
				return Internal("更新日志失败", err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Internal("查询日志失败", err)
		}
		journal = models.Journal{
			ID:           utils.GenerateID(),
			EntryDate:    dayStart,
			Content:      content,
			TemplateName: templateName,
			CreatedByID:  in.UserID,
		}
		if err := tx.Create(&journal).Error; err != nil {
			return Internal("创建日志失败", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if skipped {
		return &models.AutoGenerateResult{
			Success:    false,
			Message:    "当天日志已存在，按配置不覆盖",
			JournalID:  journal.ID,
			TasksCount: len(tasks),
		}, nil
	}

	return &models.AutoGenerateResult{
		Success:    true,
		Message:    fmt.Sprintf("日报生成成功，包含 %d 个任务", len(tasks)),
		JournalID:  journal.ID,
		TasksCount: len(tasks),
	}, nil
}

// Upsert 按(日期,用户)对日志做创建或整体替换
func (s *JournalService) Upsert(uid string, date time.Time, content, templateName string) (*models.Journal, error) {
	day := utils.DayStart(date)
	var journal models.Journal
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("entry_date = ? AND created_by_id = ?", day, uid).First(&journal).Error
		if err == nil {
			journal.Content = content
			journal.TemplateName = templateName
			if err := tx.Save(&journal).Error; err != nil {
				return Internal("更新日志失败", err)
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Internal("查询日志失败", err)
		}
		journal = models.Journal{
			ID:           utils.GenerateID(),
			EntryDate:    day,
			Content:      content,
			TemplateName: templateName,
			CreatedByID:  uid,
		}
		if err := tx.Create(&journal).Error; err != nil {
			return Internal("创建日志失败", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &journal, nil
}

// renderJournal 按固定模板渲染日报正文
func renderJournal(day time.Time, tasks []models.Task, cfg models.AutoJournalSettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s 日报\n\n", day.Format("2006-01-02"))

	if len(tasks) == 0 {
		b.WriteString("今天没有完成的任务。\n")
		return b.String()
	}

	fmt.Fprintf(&b, "今日完成 %d 个任务：\n\n", len(tasks))
	for _, task := range tasks {
		b.WriteString("- " + task.Title)
		if cfg.IncludeTimeSpent && task.TotalTimeSpent > 0 {
			fmt.Fprintf(&b, "（用时 %s）", FormatDuration(task.TotalTimeSpent))
		}
		if cfg.IncludeProject && task.Project != nil {
			fmt.Fprintf(&b, " · 项目：%s", task.Project.Name)
		}
		if cfg.IncludeTags && len(task.Tags) > 0 {
			names := make([]string, 0, len(task.Tags))
			for _, tag := range task.Tags {
				names = append(names, tag.Name)
			}
			fmt.Fprintf(&b, " · 标签：%s", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDuration 把秒数格式化为 1h05m / 12m30s / 45s
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	if secs > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, secs)
	}
	return fmt.Sprintf("%dm", minutes)
}
