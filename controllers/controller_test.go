package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/routes"
	"DoneflowGo/services"
	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.InitTestLogger()
	config.RedisClient = nil
	utils.InitJWT("test-secret")

	testDBSeq++
	dsn := fmt.Sprintf("file:controllers_test_%d?mode=memory&cache=shared", testDBSeq)
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

	settingsService := services.NewSettingsService()
	journalService := services.NewJournalService(settingsService, nil)
	taskService := services.NewTaskService(journalService)

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		TaskService:       taskService,
		JournalService:    journalService,
		SettingsService:   settingsService,
		Scheduler:         nil,
		InternalAuthToken: "internal-secret",
	})
	return r
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newAuthedUser(assert *assert.Assertions, r *gin.Engine) (string, string) {
	w := doJSON(r, http.MethodPost, "/api/v1/auth/test-user", "", nil)
	assert.Equal(http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(resp.Token)
	return resp.Token, resp.User.ID
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)

	w := doJSON(r, http.MethodGet, "/api/v1/tasks", "", nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/tasks", "not-a-token", nil)
	assert.Equal(http.StatusUnauthorized, w.Code)

	// 裸token和Bearer前缀都接受
	token, _ := newAuthedUser(assert, r)
	w = doJSON(r, http.MethodGet, "/api/v1/tasks", token, nil)
	assert.Equal(http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/v1/tasks", "Bearer "+token, nil)
	assert.Equal(http.StatusOK, w.Code)
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)
	token, _ := newAuthedUser(assert, r)

	w := doJSON(r, http.MethodPost, "/api/v1/tasks", token, gin.H{
		"title":  "通过接口创建",
		"status": "todo",
	})
	assert.Equal(http.StatusOK, w.Code)

	var task models.Task
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &task))
	assert.NotEmpty(task.ID)

	w = doJSON(r, http.MethodPost, "/api/v1/tasks/"+task.ID+"/status", token, gin.H{
		"status": "done",
	})
	assert.Equal(http.StatusOK, w.Code)
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(models.TaskStatusDone, task.Status)
	assert.NotNil(task.CompletedAt)

	// 无效状态映射为400
	w = doJSON(r, http.MethodPost, "/api/v1/tasks/"+task.ID+"/status", token, gin.H{
		"status": "paused",
	})
	assert.Equal(http.StatusBadRequest, w.Code)

	// 不存在的任务映射为404
	w = doJSON(r, http.MethodGet, "/api/v1/tasks/no-such-id", token, nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

func TestOwnershipHiddenOverHTTP(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)

	ownerToken, _ := newAuthedUser(assert, r)
	otherToken, _ := newAuthedUser(assert, r)

	w := doJSON(r, http.MethodPost, "/api/v1/tasks", ownerToken, gin.H{"title": "私密"})
	assert.Equal(http.StatusOK, w.Code)
	var task models.Task
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &task))

	// 他人访问返回404，与不存在不可区分
	w = doJSON(r, http.MethodGet, "/api/v1/tasks/"+task.ID, otherToken, nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

func TestProjectDeleteInUseOverHTTP(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)
	token, _ := newAuthedUser(assert, r)

	w := doJSON(r, http.MethodPost, "/api/v1/projects", token, gin.H{"name": "带任务的项目"})
	assert.Equal(http.StatusOK, w.Code)
	var project models.Project
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &project))

	w = doJSON(r, http.MethodPost, "/api/v1/tasks", token, gin.H{
		"title":     "项目内任务",
		"projectId": project.ID,
	})
	assert.Equal(http.StatusOK, w.Code)

	// 项目下还有任务时删除被拒绝，错误信息带具体数量
	w = doJSON(r, http.MethodDelete, "/api/v1/projects/"+project.ID, token, nil)
	assert.Equal(http.StatusBadRequest, w.Code)
	assert.Contains(w.Body.String(), "1 个任务")

	// 同名项目冲突
	w = doJSON(r, http.MethodPost, "/api/v1/projects", token, gin.H{"name": "带任务的项目"})
	assert.Equal(http.StatusConflict, w.Code)
}

func TestTagDeleteInUseOverHTTP(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)
	token, _ := newAuthedUser(assert, r)

	w := doJSON(r, http.MethodPost, "/api/v1/tags", token, gin.H{"name": "工作"})
	assert.Equal(http.StatusOK, w.Code)
	var tag models.Tag
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &tag))

	// 同名标签是唯一键冲突
	w = doJSON(r, http.MethodPost, "/api/v1/tags", token, gin.H{"name": "工作"})
	assert.Equal(http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/tasks", token, gin.H{
		"title":  "带标签的任务",
		"tagIds": []string{tag.ID},
	})
	assert.Equal(http.StatusOK, w.Code)

	// 使用中的标签删除是前置条件不满足
	w = doJSON(r, http.MethodDelete, "/api/v1/tags/"+tag.ID, token, nil)
	assert.Equal(http.StatusBadRequest, w.Code)
}

func TestJournalStrictCreateConflict(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)
	token, _ := newAuthedUser(assert, r)

	body := gin.H{"entryDate": "2026-08-29T10:00:00Z", "content": "第一版"}
	w := doJSON(r, http.MethodPost, "/api/v1/journals", token, body)
	assert.Equal(http.StatusOK, w.Code)

	// 同一天严格创建冲突，upsert 则替换
	w = doJSON(r, http.MethodPost, "/api/v1/journals", token, body)
	assert.Equal(http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/journals/upsert", token, gin.H{
		"entryDate": "2026-08-29T18:00:00Z",
		"content":   "第二版",
	})
	assert.Equal(http.StatusOK, w.Code)
	var journal models.Journal
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &journal))
	assert.Equal("第二版", journal.Content)
}

func TestInternalRoutesRequireToken(t *testing.T) {
	r := setupRouter(t)
	assert := assert.New(t)

	req := httptest.NewRequest(http.MethodGet, "/internal/scheduler/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/internal/scheduler/status", nil)
	req.Header.Set("X-Internal-Auth", "internal-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(http.StatusOK, w.Code)
}
