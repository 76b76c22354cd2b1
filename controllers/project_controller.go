package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/services"
	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectController struct{}

// ownedProject 按所有者加载项目
func ownedProject(tx *gorm.DB, uid, id string, project *models.Project) error {
	if err := tx.Where("id = ? AND created_by_id = ?", id, uid).First(project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("项目不存在")
		}
		return services.Internal("查询项目失败", err)
	}
	return nil
}

// projectNameTaken 未归档项目内的名称唯一性检查
func projectNameTaken(tx *gorm.DB, uid, name, excludeID string) (bool, error) {
	var count int64
	q := tx.Model(&models.Project{}).
		Where("created_by_id = ? AND name = ? AND is_archived = ?", uid, name, false)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, services.Internal("查询项目失败", err)
	}
	return count > 0, nil
}

// Create 创建项目，未归档项目名称不可重复
func (pc *ProjectController) Create(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taken, err := projectNameTaken(config.DB, uid, req.Name, "")
	if err != nil {
		respondError(c, err)
		return
	}
	if taken {
		respondError(c, services.Conflict("同名项目已存在"))
		return
	}

	project := models.Project{
		ID:          utils.GenerateID(),
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		CreatedByID: uid,
	}
	if err := config.DB.Create(&project).Error; err != nil {
		respondError(c, services.Internal("创建项目失败", err))
		return
	}
	c.JSON(http.StatusOK, project)
}

// List 项目列表，可按归档状态过滤
func (pc *ProjectController) List(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	q := config.DB.Where("created_by_id = ?", uid)
	if c.Query("includeArchived") != "true" {
		q = q.Where("is_archived = ?", false)
	}

	var projects []models.Project
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		respondError(c, services.Internal("查询项目列表失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": projects})
}

// Get 按ID获取项目
func (pc *ProjectController) Get(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Update 更新项目
func (pc *ProjectController) Update(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != project.Name {
		taken, err := projectNameTaken(config.DB, uid, *req.Name, project.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if taken {
			respondError(c, services.Conflict("同名项目已存在"))
			return
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&project).Updates(updates).Error; err != nil {
			respondError(c, services.Internal("更新项目失败", err))
			return
		}
	}
	c.JSON(http.StatusOK, project)
}

// projectUsage 统计项目下的任务数和笔记数
func projectUsage(tx *gorm.DB, projectID string) (int64, int64, error) {
	var taskCount, noteCount int64
	if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).Count(&taskCount).Error; err != nil {
		return 0, 0, services.Internal("统计项目任务失败", err)
	}
	if err := tx.Model(&models.Note{}).Where("project_id = ?", projectID).Count(&noteCount).Error; err != nil {
		return 0, 0, services.Internal("统计项目笔记失败", err)
	}
	return taskCount, noteCount, nil
}

// Delete 删除项目，仍有任务或笔记时拒绝
func (pc *ProjectController) Delete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}

	taskCount, noteCount, err := projectUsage(config.DB, project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if taskCount > 0 || noteCount > 0 {
		respondError(c, services.BadRequest(
			fmt.Sprintf("项目下还有 %d 个任务、%d 条笔记，不能删除", taskCount, noteCount)))
		return
	}

	if err := config.DB.Delete(&project).Error; err != nil {
		respondError(c, services.Internal("删除项目失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "项目已删除"})
}

// Archive 归档项目
func (pc *ProjectController) Archive(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}
	if project.IsArchived {
		respondError(c, services.BadRequest("项目已归档"))
		return
	}

	if err := config.DB.Model(&project).Update("is_archived", true).Error; err != nil {
		respondError(c, services.Internal("归档项目失败", err))
		return
	}
	c.JSON(http.StatusOK, project)
}

// Stats 项目统计
func (pc *ProjectController) Stats(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}

	stats := models.ProjectStatsResponse{StatusCounts: map[string]int64{}}

	taskCount, noteCount, err := projectUsage(config.DB, project.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	stats.TaskCount = taskCount
	stats.NoteCount = noteCount

	type groupRow struct {
		K     string
		Count int64
	}
	var rows []groupRow
	if err := config.DB.Model(&models.Task{}).Where("project_id = ?", project.ID).
		Select("status AS k, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		respondError(c, services.Internal("统计项目任务失败", err))
		return
	}
	for _, row := range rows {
		stats.StatusCounts[row.K] = row.Count
		if row.K == models.TaskStatusDone {
			stats.CompletedTasks = row.Count
		}
	}
	if stats.TaskCount > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TaskCount)
	}
	c.JSON(http.StatusOK, stats)
}

// GetTasks 项目下的任务列表
func (pc *ProjectController) GetTasks(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}

	var tasks []models.Task
	if err := config.DB.Preload("Tags").
		Where("project_id = ? AND created_by_id = ?", project.ID, uid).
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		respondError(c, services.Internal("查询项目任务失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tasks})
}

// GetNotes 项目下的笔记列表
func (pc *ProjectController) GetNotes(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var project models.Project
	if err := ownedProject(config.DB, uid, c.Param("id"), &project); err != nil {
		respondError(c, err)
		return
	}

	var notes []models.Note
	if err := config.DB.Preload("Tags").
		Where("project_id = ? AND created_by_id = ?", project.ID, uid).
		Order("created_at DESC").Find(&notes).Error; err != nil {
		respondError(c, services.Internal("查询项目笔记失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": notes})
}

// Batch 项目批量操作
func (pc *ProjectController) Batch(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.BatchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := models.BatchOperationResponse{}
	for _, id := range req.Ids {
		err := config.DB.Transaction(func(tx *gorm.DB) error {
			var project models.Project
			if err := ownedProject(tx, uid, id, &project); err != nil {
				return err
			}
			switch req.Operation {
			case "archive":
				return tx.Model(&project).Update("is_archived", true).Error
			case "unarchive":
				return tx.Model(&project).Update("is_archived", false).Error
			case "delete":
				taskCount, noteCount, err := projectUsage(tx, project.ID)
				if err != nil {
					return err
				}
				if taskCount > 0 || noteCount > 0 {
					return services.BadRequest(
						fmt.Sprintf("项目 %s 下还有 %d 个任务、%d 条笔记", project.Name, taskCount, noteCount))
				}
				return tx.Delete(&project).Error
			}
			return nil
		})
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, services.AsError(err).Message)
			continue
		}
		resp.Succeeded++
	}
	c.JSON(http.StatusOK, resp)
}
