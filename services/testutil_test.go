package services

import (
	"fmt"
	"testing"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/utils"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int

// setupTestDB 每个测试用独立的内存库
func setupTestDB(t *testing.T) {
	t.Helper()

	config.InitTestLogger()
	config.RedisClient = nil

	testDBSeq++
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared&_loc=auto", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	config.DB = db
}

func createTestUser(assert *assert.Assertions) *models.User {
	user := models.User{
		ID:         utils.GenerateID(),
		Username:   "tester",
		Email:      "tester@example.com",
		IsTestUser: true,
	}
	assert.Nil(config.DB.Create(&user).Error)
	return &user
}

func createTestTask(assert *assert.Assertions, svc *TaskService, uid, title, status string) *models.Task {
	task, err := svc.Create(uid, &models.CreateTaskRequest{
		Title:  title,
		Type:   models.TaskTypeNormal,
		Status: status,
	})
	assert.Nil(err)
	assert.NotNil(task)
	return task
}

func taskHistory(assert *assert.Assertions, taskID string) []models.TaskStatusHistory {
	var rows []models.TaskStatusHistory
	assert.Nil(config.DB.Where("task_id = ?", taskID).Order("created_at, id").Find(&rows).Error)
	return rows
}

func errKind(err error) ErrKind {
	return AsError(err).Kind
}
