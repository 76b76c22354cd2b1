package services

import (
	"testing"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateTaskWritesInitialHistory(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)

	task := createTestTask(assert, svc, user.ID, "写周报", models.TaskStatusTodo)
	assert.Equal(models.TaskStatusTodo, task.Status)
	assert.Nil(task.CompletedAt)
	assert.Equal(0, task.CompletedCount)

	rows := taskHistory(assert, task.ID)
	assert.Len(rows, 1)
	assert.Equal("", rows[0].FromStatus)
	assert.Equal(models.TaskStatusTodo, rows[0].ToStatus)
}

func TestTaskOwnershipIndistinguishable(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	owner := createTestUser(assert)
	other := createTestUser(assert)

	task := createTestTask(assert, svc, owner.ID, "私密任务", models.TaskStatusTodo)

	// 他人的任务和不存在的任务返回同样的NotFound
	_, err := svc.Get(other.ID, task.ID)
	assert.Equal(KindNotFound, errKind(err))
	otherMsg := AsError(err).Message

	_, err = svc.Get(other.ID, "no-such-id")
	assert.Equal(KindNotFound, errKind(err))
	assert.Equal(otherMsg, AsError(err).Message)
}

func TestUpdateStatusToDoneStampsCompletion(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "完成任务", models.TaskStatusTodo)

	done, err := svc.UpdateStatus(user.ID, task.ID, models.TaskStatusDone, "收工")
	assert.Nil(err)
	assert.Equal(models.TaskStatusDone, done.Status)
	assert.NotNil(done.CompletedAt)
	assert.Equal(1, done.CompletedCount)

	rows := taskHistory(assert, task.ID)
	assert.Len(rows, 2)
	assert.Equal(models.TaskStatusTodo, rows[1].FromStatus)
	assert.Equal(models.TaskStatusDone, rows[1].ToStatus)
	assert.Equal("收工", rows[1].Note)

	// 离开done时清除完成时间，但完成次数保留
	back, err := svc.UpdateStatus(user.ID, task.ID, models.TaskStatusTodo, "")
	assert.Nil(err)
	assert.Nil(back.CompletedAt)
	assert.Equal(1, back.CompletedCount)

	// 再次完成，次数累加
	again, err := svc.UpdateStatus(user.ID, task.ID, models.TaskStatusDone, "")
	assert.Nil(err)
	assert.Equal(2, again.CompletedCount)
}

func TestUpdateStatusNoOp(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "原地踏步", models.TaskStatusTodo)

	same, err := svc.UpdateStatus(user.ID, task.ID, models.TaskStatusTodo, "不该记录")
	assert.Nil(err)
	assert.Equal(models.TaskStatusTodo, same.Status)
	assert.Nil(same.CompletedAt)

	// 幂等变更不写状态记录
	assert.Len(taskHistory(assert, task.ID), 1)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "任务", models.TaskStatusTodo)

	_, err := svc.UpdateStatus(user.ID, task.ID, "paused", "")
	assert.Equal(KindBadRequest, errKind(err))
}

func TestStartTimerExclusivePerUser(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	taskA := createTestTask(assert, svc, user.ID, "任务A", models.TaskStatusTodo)
	taskB := createTestTask(assert, svc, user.ID, "任务B", models.TaskStatusTodo)

	a, err := svc.StartTimer(user.ID, taskA.ID)
	assert.Nil(err)
	assert.True(a.IsTimerActive)
	assert.NotNil(a.TimerStartedAt)

	// 同一任务重复开始计时被拒绝
	_, err = svc.StartTimer(user.ID, taskA.ID)
	assert.Equal(KindBadRequest, errKind(err))

	// 切到任务B，任务A的计时被强制关闭且不累计用时
	b, err := svc.StartTimer(user.ID, taskB.ID)
	assert.Nil(err)
	assert.True(b.IsTimerActive)

	a, err = svc.Get(user.ID, taskA.ID)
	assert.Nil(err)
	assert.False(a.IsTimerActive)
	assert.Nil(a.TimerStartedAt)
	assert.Equal(0, a.TotalTimeSpent)

	// 全库同一用户至多一条打开的计时记录
	var open int64
	assert.Nil(config.DB.Model(&models.TimeEntry{}).
		Where("created_by_id = ? AND end_time IS NULL", user.ID).Count(&open).Error)
	assert.Equal(int64(1), open)
}

func TestStartTimerRejectsTerminal(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "已完成", models.TaskStatusTodo)

	_, err := svc.UpdateStatus(user.ID, task.ID, models.TaskStatusDone, "")
	assert.Nil(err)

	_, err = svc.StartTimer(user.ID, task.ID)
	assert.Equal(KindBadRequest, errKind(err))
}

func TestPauseTimerAccumulates(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "分段计时", models.TaskStatusInProgress)

	_, err := svc.StartTimer(user.ID, task.ID)
	assert.Nil(err)
	paused, err := svc.PauseTimer(user.ID, task.ID)
	assert.Nil(err)
	assert.False(paused.IsTimerActive)
	assert.Equal(models.TaskStatusInProgress, paused.Status)

	// 没有运行中的计时器时暂停被拒绝
	_, err = svc.PauseTimer(user.ID, task.ID)
	assert.Equal(KindBadRequest, errKind(err))

	_, err = svc.StartTimer(user.ID, task.ID)
	assert.Nil(err)
	_, err = svc.PauseTimer(user.ID, task.ID)
	assert.Nil(err)

	entries, err := svc.GetTimeEntries(user.ID, task.ID)
	assert.Nil(err)
	assert.Len(entries, 2)
	for _, entry := range entries {
		assert.NotNil(entry.EndTime)
		assert.NotNil(entry.Duration)
		assert.GreaterOrEqual(*entry.Duration, 0)
	}
}

func TestStopTimerFromIdea(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "灵感落地", models.TaskStatusIdea)

	// 想法状态开始计时即进入进行中，该提升不写状态记录
	started, err := svc.StartTimer(user.ID, task.ID)
	assert.Nil(err)
	assert.Equal(models.TaskStatusInProgress, started.Status)
	assert.Len(taskHistory(assert, task.ID), 1)

	stopped, err := svc.StopTimer(user.ID, task.ID)
	assert.Nil(err)
	assert.Equal(models.TaskStatusDone, stopped.Status)
	assert.False(stopped.IsTimerActive)
	assert.NotNil(stopped.CompletedAt)
	assert.Equal(1, stopped.CompletedCount)

	// 全程只有创建和完成两条状态记录
	rows := taskHistory(assert, task.ID)
	assert.Len(rows, 2)
	assert.Equal(models.TaskStatusIdea, rows[0].ToStatus)
	assert.Equal(models.TaskStatusInProgress, rows[1].FromStatus)
	assert.Equal(models.TaskStatusDone, rows[1].ToStatus)

	entries, err := svc.GetTimeEntries(user.ID, task.ID)
	assert.Nil(err)
	assert.Len(entries, 1)
	assert.NotNil(entries[0].EndTime)
}

func TestRestart(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "重启", models.TaskStatusTodo)

	// 未完成的任务不能重启
	_, err := svc.Restart(user.ID, task.ID, "")
	assert.Equal(KindBadRequest, errKind(err))

	_, err = svc.UpdateStatus(user.ID, task.ID, models.TaskStatusDone, "")
	assert.Nil(err)

	// 重启目标不能是终止状态
	_, err = svc.Restart(user.ID, task.ID, models.TaskStatusArchived)
	assert.Equal(KindBadRequest, errKind(err))

	restarted, err := svc.Restart(user.ID, task.ID, "")
	assert.Nil(err)
	assert.Equal(models.TaskStatusTodo, restarted.Status)
	assert.Nil(restarted.CompletedAt)
	assert.Equal(1, restarted.CompletedCount)
}

func TestArchiveStopsTimer(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "归档", models.TaskStatusInProgress)

	_, err := svc.StartTimer(user.ID, task.ID)
	assert.Nil(err)

	archived, err := svc.Archive(user.ID, task.ID)
	assert.Nil(err)
	assert.Equal(models.TaskStatusArchived, archived.Status)
	assert.False(archived.IsTimerActive)
	assert.Nil(archived.CompletedAt)

	// 归档不算完成
	assert.Equal(0, archived.CompletedCount)

	_, err = svc.Archive(user.ID, task.ID)
	assert.Equal(KindBadRequest, errKind(err))
}

func TestGenerateNextInstance(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)

	tag := models.Tag{ID: "tag-1", Name: "例行", CreatedByID: user.ID}
	assert.Nil(config.DB.Create(&tag).Error)

	priority := models.TaskPriorityHigh
	task, err := svc.Create(user.ID, &models.CreateTaskRequest{
		Title:       "每周回顾",
		Status:      models.TaskStatusTodo,
		Priority:    &priority,
		TagIDs:      []string{tag.ID},
		IsRecurring: true,
		RecurrencePattern: &models.RecurrencePattern{
			Type:     models.RecurrenceWeekly,
			Interval: 1,
		},
	})
	assert.Nil(err)

	next, err := svc.GenerateNextInstance(user.ID, task.ID)
	assert.Nil(err)
	assert.Equal(task.Title, next.Title)
	assert.Equal(models.TaskStatusTodo, next.Status)
	assert.NotNil(next.ParentTaskID)
	assert.Equal(task.ID, *next.ParentTaskID)
	assert.Len(next.Tags, 1)

	assert.NotNil(next.DueDate)
	expected := time.Now().Add(7 * 24 * time.Hour)
	assert.WithinDuration(expected, *next.DueDate, time.Minute)

	// 新实例有自己的首条状态记录
	assert.Len(taskHistory(assert, next.ID), 1)

	// 未设置重复规则的任务不能展开
	plain := createTestTask(assert, svc, user.ID, "普通任务", models.TaskStatusTodo)
	_, err = svc.GenerateNextInstance(user.ID, plain.ID)
	assert.Equal(KindBadRequest, errKind(err))
}

func TestTaskStats(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)

	high := models.TaskPriorityHigh
	for i := 0; i < 3; i++ {
		_, err := svc.Create(user.ID, &models.CreateTaskRequest{
			Title:    "任务",
			Status:   models.TaskStatusTodo,
			Priority: &high,
		})
		assert.Nil(err)
	}
	done := createTestTask(assert, svc, user.ID, "已完成", models.TaskStatusTodo)
	_, err := svc.UpdateStatus(user.ID, done.ID, models.TaskStatusDone, "")
	assert.Nil(err)

	stats, err := svc.Stats(user.ID, nil, nil)
	assert.Nil(err)
	assert.Equal(int64(4), stats.TotalTasks)
	assert.Equal(int64(1), stats.CompletedTasks)
	assert.InDelta(0.25, stats.CompletionRate, 0.001)
	assert.Equal(int64(3), stats.StatusCounts[models.TaskStatusTodo])
	assert.Equal(int64(1), stats.StatusCounts[models.TaskStatusDone])
	assert.Equal(int64(3), stats.PriorityCounts[models.TaskPriorityHigh])
}

func TestListTasksCursorPagination(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		task := models.Task{
			ID:          "task-" + string(rune('a'+i)),
			Title:       "任务",
			Status:      models.TaskStatusTodo,
			CreatedByID: user.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		assert.Nil(config.DB.Create(&task).Error)
	}

	page1, err := svc.List(user.ID, &models.ListTasksRequest{Limit: 2})
	assert.Nil(err)
	assert.Len(page1.Items, 2)
	assert.NotEmpty(page1.NextCursor)

	page2, err := svc.List(user.ID, &models.ListTasksRequest{Limit: 2, Cursor: page1.NextCursor})
	assert.Nil(err)
	assert.Len(page2.Items, 2)
	assert.NotEmpty(page2.NextCursor)

	page3, err := svc.List(user.ID, &models.ListTasksRequest{Limit: 2, Cursor: page2.NextCursor})
	assert.Nil(err)
	assert.Len(page3.Items, 1)
	assert.Empty(page3.NextCursor)

	// 三页合起来无重复
	seen := map[string]bool{}
	for _, page := range [][]models.Task{page1.Items, page2.Items, page3.Items} {
		for _, task := range page {
			assert.False(seen[task.ID])
			seen[task.ID] = true
		}
	}
	assert.Len(seen, 5)

	_, err = svc.List(user.ID, &models.ListTasksRequest{Cursor: "not-a-cursor"})
	assert.Equal(KindBadRequest, errKind(err))
}

func TestDeleteTaskRemovesChildren(t *testing.T) {
	setupTestDB(t)
	assert := assert.New(t)

	svc := NewTaskService(nil)
	user := createTestUser(assert)
	task := createTestTask(assert, svc, user.ID, "待删除", models.TaskStatusTodo)

	_, err := svc.StartTimer(user.ID, task.ID)
	assert.Nil(err)
	_, err = svc.PauseTimer(user.ID, task.ID)
	assert.Nil(err)

	assert.Nil(svc.Delete(user.ID, task.ID))

	_, err = svc.Get(user.ID, task.ID)
	assert.Equal(KindNotFound, errKind(err))

	var entries, histories int64
	assert.Nil(config.DB.Model(&models.TimeEntry{}).Where("task_id = ?", task.ID).Count(&entries).Error)
	assert.Nil(config.DB.Model(&models.TaskStatusHistory{}).Where("task_id = ?", task.ID).Count(&histories).Error)
	assert.Equal(int64(0), entries)
	assert.Equal(int64(0), histories)
}
