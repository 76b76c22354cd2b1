package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/services"
	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NoteController struct{}

// ownedNote 按所有者加载笔记
func ownedNote(tx *gorm.DB, uid, id string, note *models.Note) error {
	if err := tx.Where("id = ? AND created_by_id = ?", id, uid).First(note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("笔记不存在")
		}
		return services.Internal("查询笔记失败", err)
	}
	return nil
}

// Create 创建笔记
func (nc *NoteController) Create(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := models.Note{
		ID:          utils.GenerateID(),
		Title:       req.Title,
		Content:     req.Content,
		Summary:     req.Summary,
		IsPinned:    req.IsPinned,
		ProjectID:   req.ProjectID,
		CreatedByID: uid,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if req.ProjectID != nil {
			var project models.Project
			if err := ownedProject(tx, uid, *req.ProjectID, &project); err != nil {
				return err
			}
		}
		if len(req.TagIDs) > 0 {
			var tags []models.Tag
			if err := tx.Where("id IN ? AND created_by_id = ?", req.TagIDs, uid).Find(&tags).Error; err != nil {
				return services.Internal("查询标签失败", err)
			}
			if len(tags) != len(req.TagIDs) {
				return services.NotFound("标签不存在")
			}
			note.Tags = tags
		}
		if err := tx.Create(&note).Error; err != nil {
			return services.Internal("创建笔记失败", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// List 游标分页查询笔记列表
func (nc *NoteController) List(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	limit := utils.NormalizeLimit(0)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = utils.NormalizeLimit(parsed)
		}
	}

	q := config.DB.Preload("Tags").Preload("Project").Where("created_by_id = ?", uid)
	if c.Query("includeArchived") != "true" {
		q = q.Where("is_archived = ?", false)
	}
	if projectID := c.Query("projectId"); projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	if c.Query("pinned") == "true" {
		q = q.Where("is_pinned = ?", true)
	}
	if raw := c.Query("cursor"); raw != "" {
		cursor, err := utils.DecodeCursor(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的游标"})
			return
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.SortKey, cursor.SortKey, cursor.ID)
	}

	var notes []models.Note
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&notes).Error; err != nil {
		respondError(c, services.Internal("查询笔记列表失败", err))
		return
	}

	resp := models.NoteListResponse{Items: notes}
	if len(notes) > limit {
		resp.Items = notes[:limit]
		last := resp.Items[limit-1]
		resp.NextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	c.JSON(http.StatusOK, resp)
}

// Get 按ID获取笔记
func (nc *NoteController) Get(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var note models.Note
	err := config.DB.Preload("Tags").Preload("Tasks").Preload("Project").
		Where("id = ? AND created_by_id = ?", c.Param("id"), uid).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, services.NotFound("笔记不存在"))
			return
		}
		respondError(c, services.Internal("查询笔记失败", err))
		return
	}
	c.JSON(http.StatusOK, note)
}

// Update 更新笔记
func (nc *NoteController) Update(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var note models.Note
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := ownedNote(tx, uid, c.Param("id"), &note); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if req.Summary != nil {
			updates["summary"] = *req.Summary
		}
		if req.IsPinned != nil {
			updates["is_pinned"] = *req.IsPinned
		}
		if req.ProjectID != nil {
			if *req.ProjectID == "" {
				updates["project_id"] = nil
			} else {
				var project models.Project
				if err := ownedProject(tx, uid, *req.ProjectID, &project); err != nil {
					return err
				}
				updates["project_id"] = *req.ProjectID
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&note).Updates(updates).Error; err != nil {
				return services.Internal("更新笔记失败", err)
			}
		}
		if req.TagIDs != nil {
			var tags []models.Tag
			if len(*req.TagIDs) > 0 {
				if err := tx.Where("id IN ? AND created_by_id = ?", *req.TagIDs, uid).Find(&tags).Error; err != nil {
					return services.Internal("查询标签失败", err)
				}
				if len(tags) != len(*req.TagIDs) {
					return services.NotFound("标签不存在")
				}
			}
			if err := tx.Model(&note).Association("Tags").Replace(tags); err != nil {
				return services.Internal("更新笔记标签失败", err)
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// Delete 删除笔记及其关联
func (nc *NoteController) Delete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := ownedNote(tx, uid, c.Param("id"), &note); err != nil {
			return err
		}
		if err := tx.Model(&note).Association("Tags").Clear(); err != nil {
			return services.Internal("删除标签关联失败", err)
		}
		if err := tx.Model(&note).Association("Tasks").Clear(); err != nil {
			return services.Internal("删除任务关联失败", err)
		}
		if err := tx.Delete(&note).Error; err != nil {
			return services.Internal("删除笔记失败", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "笔记已删除"})
}

// Archive 归档笔记
func (nc *NoteController) Archive(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var note models.Note
	if err := ownedNote(config.DB, uid, c.Param("id"), &note); err != nil {
		respondError(c, err)
		return
	}
	if note.IsArchived {
		respondError(c, services.BadRequest("笔记已归档"))
		return
	}

	if err := config.DB.Model(&note).Update("is_archived", true).Error; err != nil {
		respondError(c, services.Internal("归档笔记失败", err))
		return
	}
	c.JSON(http.StatusOK, note)
}

// LinkTask 关联任务
func (nc *NoteController) LinkTask(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := ownedNote(tx, uid, c.Param("id"), &note); err != nil {
			return err
		}
		var task models.Task
		if err := tx.Where("id = ? AND created_by_id = ?", c.Param("taskId"), uid).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.NotFound("任务不存在")
			}
			return services.Internal("查询任务失败", err)
		}

		var linked int64
		if err := tx.Table("note_tasks").
			Where("note_id = ? AND task_id = ?", note.ID, task.ID).Count(&linked).Error; err != nil {
			return services.Internal("查询任务关联失败", err)
		}
		if linked > 0 {
			return services.Conflict("任务已关联到该笔记")
		}
		if err := tx.Model(&note).Association("Tasks").Append(&task); err != nil {
			return services.Internal("关联任务失败", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已关联任务"})
}

// UnlinkTask 取消关联任务
func (nc *NoteController) UnlinkTask(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := ownedNote(tx, uid, c.Param("id"), &note); err != nil {
			return err
		}
		var task models.Task
		if err := tx.Where("id = ? AND created_by_id = ?", c.Param("taskId"), uid).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.NotFound("任务不存在")
			}
			return services.Internal("查询任务失败", err)
		}
		if err := tx.Model(&note).Association("Tasks").Delete(&task); err != nil {
			return services.Internal("取消关联失败", err)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已取消关联"})
}

// Search 笔记全文模糊搜索
func (nc *NoteController) Search(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少搜索关键词"})
		return
	}

	like := "%" + keyword + "%"
	var notes []models.Note
	if err := config.DB.Preload("Tags").
		Where("created_by_id = ? AND (title LIKE ? OR content LIKE ? OR summary LIKE ?)",
			uid, like, like, like).
		Order("is_pinned DESC, created_at DESC").Limit(50).Find(&notes).Error; err != nil {
		respondError(c, services.Internal("搜索笔记失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": notes})
}

// Stats 笔记统计
func (nc *NoteController) Stats(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	stats := models.NoteStatsResponse{}
	base := config.DB.Model(&models.Note{}).Where("created_by_id = ?", uid)
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		respondError(c, services.Internal("统计笔记失败", err))
		return
	}
	if err := base.Session(&gorm.Session{}).Where("is_pinned = ?", true).Count(&stats.Pinned).Error; err != nil {
		respondError(c, services.Internal("统计笔记失败", err))
		return
	}
	if err := base.Session(&gorm.Session{}).Where("is_archived = ?", true).Count(&stats.Archived).Error; err != nil {
		respondError(c, services.Internal("统计笔记失败", err))
		return
	}
	if err := config.DB.Table("note_tasks").
		Joins("JOIN notes ON notes.id = note_tasks.note_id").
		Where("notes.created_by_id = ?", uid).Count(&stats.LinkedTasks).Error; err != nil {
		respondError(c, services.Internal("统计笔记失败", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Batch 笔记批量操作
func (nc *NoteController) Batch(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.BatchNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Operation == "move" && *req.ProjectID != "" {
		var project models.Project
		if err := ownedProject(config.DB, uid, *req.ProjectID, &project); err != nil {
			respondError(c, err)
			return
		}
	}

	resp := models.BatchOperationResponse{}
	for _, id := range req.Ids {
		err := config.DB.Transaction(func(tx *gorm.DB) error {
			var note models.Note
			if err := ownedNote(tx, uid, id, &note); err != nil {
				return err
			}
			switch req.Operation {
			case "archive":
				return tx.Model(&note).Update("is_archived", true).Error
			case "unarchive":
				return tx.Model(&note).Update("is_archived", false).Error
			case "move":
				if *req.ProjectID == "" {
					return tx.Model(&note).Update("project_id", nil).Error
				}
				return tx.Model(&note).Update("project_id", *req.ProjectID).Error
			case "delete":
				if err := tx.Model(&note).Association("Tags").Clear(); err != nil {
					return services.Internal("删除标签关联失败", err)
				}
				if err := tx.Model(&note).Association("Tasks").Clear(); err != nil {
					return services.Internal("删除任务关联失败", err)
				}
				return tx.Delete(&note).Error
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
