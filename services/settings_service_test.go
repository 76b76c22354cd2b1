package services

import (
	"testing"

	"DoneflowGo/models"

	"github.com/stretchr/testify/assert"
)

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewSettingsService()
	user := createTestUser(assert)

	value := svc.Get(user.ID)
	assert.Equal(models.RoleUser, value.Role)
	assert.True(value.AutoJournal.Enabled)
	assert.False(value.AutoJournal.OnTaskComplete)
	assert.Equal("23:55", value.AutoJournal.ScheduleTime)
	assert.Equal("daily", value.AutoJournal.TemplateName)
}

func TestSettingsUpdateRoundTrip(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewSettingsService()
	user := createTestUser(assert)

	value := svc.Get(user.ID)
	value.AutoJournal.OnTaskComplete = true
	value.AutoJournal.ScheduleEnabled = true
	value.AutoJournal.ScheduleTime = "08:30"
	value.UI.Theme = "dark"
	// 角色字段不接受客户端修改
	value.Role = models.RoleAdmin

	saved, err := svc.Update(user.ID, value)
	assert.Nil(err)
	assert.Equal(models.RoleUser, saved.Role)

	reloaded := svc.Get(user.ID)
	assert.True(reloaded.AutoJournal.OnTaskComplete)
	assert.Equal("08:30", reloaded.AutoJournal.ScheduleTime)
	assert.Equal("dark", reloaded.UI.Theme)
	assert.Equal(models.RoleUser, reloaded.Role)
}

func TestSettingsUpdateRejectsBadScheduleTime(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewSettingsService()
	user := createTestUser(assert)

	value := svc.Get(user.ID)
	value.AutoJournal.ScheduleTime = "25:99"

	_, err := svc.Update(user.ID, value)
	assert.Equal(KindBadRequest, errKind(err))
}

func TestListScheduled(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewSettingsService()
	scheduled := createTestUser(assert)
	unscheduled := createTestUser(assert)

	saveSettings(assert, scheduled.ID, func(v *models.SettingsValue) {
		v.AutoJournal.ScheduleEnabled = true
		v.AutoJournal.ScheduleTime = "07:15"
	})
	saveSettings(assert, unscheduled.ID, func(v *models.SettingsValue) {
		v.AutoJournal.ScheduleEnabled = false
	})

	entries, err := svc.ListScheduled()
	assert.Nil(err)
	assert.Len(entries, 1)
	assert.Equal(scheduled.ID, entries[0].UserID)
	assert.Equal("07:15", entries[0].Value.AutoJournal.ScheduleTime)
}
