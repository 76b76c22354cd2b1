package controllers

import (
	"net/http"

	"DoneflowGo/models"
	"DoneflowGo/services"

	"github.com/gin-gonic/gin"
)

type TaskController struct {
	taskService *services.TaskService
}

func NewTaskController(taskService *services.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// Create 创建任务
func (tc *TaskController) Create(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.taskService.Create(uid, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// List 游标分页查询任务列表
func (tc *TaskController) List(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.ListTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := tc.taskService.List(uid, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 按ID获取任务
func (tc *TaskController) Get(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.Get(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update 更新任务基础字段
func (tc *TaskController) Update(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.taskService.Update(uid, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete 删除任务
func (tc *TaskController) Delete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	if err := tc.taskService.Delete(uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务已删除"})
}

// UpdateStatus 显式状态变更
func (tc *TaskController) UpdateStatus(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.taskService.UpdateStatus(uid, c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Restart 重启已完成或已归档的任务
func (tc *TaskController) Restart(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.RestartTaskRequest
	_ = c.ShouldBindJSON(&req)

	task, err := tc.taskService.Restart(uid, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Archive 归档任务
func (tc *TaskController) Archive(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.Archive(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// StartTimer 开始计时
func (tc *TaskController) StartTimer(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.StartTimer(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PauseTimer 暂停计时
func (tc *TaskController) PauseTimer(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.PauseTimer(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// StopTimer 停止计时并完成任务
func (tc *TaskController) StopTimer(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.StopTimer(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetRecurring 设置或清除重复规则
func (tc *TaskController) SetRecurring(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.SetRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.taskService.SetRecurring(uid, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GenerateNextInstance 展开重复任务的下一个实例
func (tc *TaskController) GenerateNextInstance(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	task, err := tc.taskService.GenerateNextInstance(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetTimeEntries 获取任务的计时记录
func (tc *TaskController) GetTimeEntries(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	entries, err := tc.taskService.GetTimeEntries(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Stats 任务统计
func (tc *TaskController) Stats(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.StatsRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := tc.taskService.Stats(uid, req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
