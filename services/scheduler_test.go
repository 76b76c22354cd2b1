package services

import (
	"testing"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/utils"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerLifecycle(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	settings := NewSettingsService()
	journal := NewJournalService(settings, nil)
	scheduler := NewScheduler(journal, settings, time.Hour)

	status := scheduler.Status()
	assert.False(status.Running)
	assert.Equal("1h0m0s", status.Interval)

	scheduler.Start()
	assert.True(scheduler.Status().Running)

	// 重复Start是空操作
	scheduler.Start()

	scheduler.Stop()
	scheduler.Wait()
	assert.False(scheduler.Status().Running)

	// 重复Stop是空操作
	scheduler.Stop()
}

func TestSchedulerRestart(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	settings := NewSettingsService()
	journal := NewJournalService(settings, nil)
	scheduler := NewScheduler(journal, settings, time.Hour)

	scheduler.Start()
	scheduler.Stop()
	scheduler.Wait()

	// Stop之后可以重新Start，新一轮循环拿到新的停止信号
	scheduler.Start()
	assert.True(scheduler.Status().Running)

	scheduler.Stop()
	scheduler.Wait()
	assert.False(scheduler.Status().Running)
}

func TestSchedulerTickMatchesScheduleTime(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	settings := NewSettingsService()
	journal := NewJournalService(settings, nil)
	scheduler := NewScheduler(journal, settings, time.Hour)

	hit := createTestUser(assert)
	miss := createTestUser(assert)

	now := time.Date(2026, 8, 29, 23, 55, 0, 0, time.Local)
	saveSettings(assert, hit.ID, func(v *models.SettingsValue) {
		v.AutoJournal.ScheduleEnabled = true
		v.AutoJournal.ScheduleTime = "23:55"
	})
	saveSettings(assert, miss.ID, func(v *models.SettingsValue) {
		v.AutoJournal.ScheduleEnabled = true
		v.AutoJournal.ScheduleTime = "06:00"
	})

	scheduler.tick(now)

	// 只有命中配置时刻的用户生成了日报
	assert.Equal(int64(1), journalCount(assert, hit.ID))
	assert.Equal(int64(0), journalCount(assert, miss.ID))

	var journal1 models.Journal
	assert.Nil(config.DB.Where("created_by_id = ?", hit.ID).First(&journal1).Error)
	assert.Equal(utils.DayStart(now), journal1.EntryDate)

	status := scheduler.Status()
	assert.Equal(int64(1), status.Runs)
	assert.Equal(int64(0), status.Failures)
	assert.Equal(now, status.LastTick)
}

func TestSchedulerRunAll(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	settings := NewSettingsService()
	journal := NewJournalService(settings, nil)
	scheduler := NewScheduler(journal, settings, time.Hour)

	first := createTestUser(assert)
	second := createTestUser(assert)
	disabled := createTestUser(assert)

	for _, uid := range []string{first.ID, second.ID} {
		saveSettings(assert, uid, func(v *models.SettingsValue) {
			v.AutoJournal.ScheduleEnabled = true
		})
	}
	saveSettings(assert, disabled.ID, func(v *models.SettingsValue) {
		v.AutoJournal.ScheduleEnabled = false
	})

	date := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)
	succeeded, failed := scheduler.RunAll(date)
	assert.Equal(2, succeeded)
	assert.Equal(0, failed)

	assert.Equal(int64(1), journalCount(assert, first.ID))
	assert.Equal(int64(1), journalCount(assert, second.ID))
	assert.Equal(int64(0), journalCount(assert, disabled.ID))
}
