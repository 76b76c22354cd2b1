package controllers

import (
	"errors"
	"net/http"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SchedulerController 内部运维接口，由内部令牌鉴权
type SchedulerController struct {
	scheduler      *services.Scheduler
	journalService *services.JournalService
}

func NewSchedulerController(scheduler *services.Scheduler, journalService *services.JournalService) *SchedulerController {
	return &SchedulerController{scheduler: scheduler, journalService: journalService}
}

// GetStatus 查看调度器运行状态
func (sc *SchedulerController) GetStatus(c *gin.Context) {
	if sc.scheduler == nil {
		c.JSON(http.StatusOK, gin.H{"running": false, "message": "调度器未启用"})
		return
	}
	c.JSON(http.StatusOK, sc.scheduler.Status())
}

// ExecuteJournalGeneration 对所有开启定时日报的用户立即执行一轮生成
func (sc *SchedulerController) ExecuteJournalGeneration(c *gin.Context) {
	if sc.scheduler == nil {
		respondError(c, services.Conflict("调度器未启用"))
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日期格式"})
			return
		}
		date = parsed
	}

	succeeded, failed := sc.scheduler.RunAll(date)
	c.JSON(http.StatusOK, gin.H{"succeeded": succeeded, "failed": failed})
}

// ExecuteTask 对指定的已完成任务重放完成事件，重新生成当天日报
func (sc *SchedulerController) ExecuteTask(c *gin.Context) {
	taskID := c.Param("taskId")

	var task models.Task
	if err := config.DB.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, services.NotFound("任务不存在"))
			return
		}
		respondError(c, services.Internal("查询任务失败", err))
		return
	}
	if task.Status != models.TaskStatusDone {
		respondError(c, services.Conflict("任务未完成，无法重放完成事件"))
		return
	}

	input := services.GenerateInput{
		UserID:          task.CreatedByID,
		RespectSettings: true,
		Trigger:         services.TriggerOnComplete,
	}
	if task.CompletedAt != nil {
		input.Date = *task.CompletedAt
	}

	result, err := sc.journalService.AutoGenerate(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
