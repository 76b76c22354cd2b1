package controllers

import (
	"errors"
	"net/http"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/services"
	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TagController struct{}

func NewTagController() *TagController {
	return &TagController{}
}

// ownedTag 按所有者加载标签
func ownedTag(tx *gorm.DB, uid, id string, tag *models.Tag) error {
	if err := tx.Where("id = ? AND created_by_id = ?", id, uid).First(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NotFound("标签不存在")
		}
		return services.Internal("查询标签失败", err)
	}
	return nil
}

// tagUsage 统计标签在任务和笔记上的引用数
func tagUsage(tx *gorm.DB, tagID string) (taskCount, noteCount int64, err error) {
	if err = tx.Table("task_tags").Where("tag_id = ?", tagID).Count(&taskCount).Error; err != nil {
		return
	}
	err = tx.Table("note_tags").Where("tag_id = ?", tagID).Count(&noteCount).Error
	return
}

// Create 创建标签，同名标签返回冲突
func (tc *TagController) Create(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type != "" && !models.ValidTagType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的标签类型"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.Tag{}).
		Where("name = ? AND created_by_id = ?", req.Name, uid).
		Count(&count).Error; err != nil {
		respondError(c, services.Internal("查询标签失败", err))
		return
	}
	if count > 0 {
		respondError(c, services.Conflict("同名标签已存在"))
		return
	}

	tagType := req.Type
	if tagType == "" {
		tagType = models.TagTypeCustom
	}
	tag := models.Tag{
		ID:          utils.GenerateID(),
		Name:        req.Name,
		Type:        tagType,
		Color:       req.Color,
		Icon:        req.Icon,
		Category:    req.Category,
		Description: req.Description,
		CreatedByID: uid,
	}
	if err := config.DB.Create(&tag).Error; err != nil {
		respondError(c, services.Internal("创建标签失败", err))
		return
	}
	c.JSON(http.StatusOK, tag)
}

// List 标签列表，可按类型过滤
func (tc *TagController) List(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	q := config.DB.Where("created_by_id = ?", uid)
	if tagType := c.Query("type"); tagType != "" {
		if !models.ValidTagType(tagType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的标签类型"})
			return
		}
		q = q.Where("type = ?", tagType)
	}

	var tags []models.Tag
	if err := q.Order("created_at DESC").Find(&tags).Error; err != nil {
		respondError(c, services.Internal("查询标签列表失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tags})
}

// Get 按ID获取标签
func (tc *TagController) Get(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var tag models.Tag
	if err := ownedTag(config.DB, uid, c.Param("id"), &tag); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// Update 更新标签，系统标签不可改名
func (tc *TagController) Update(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tag models.Tag
	if err := ownedTag(config.DB, uid, c.Param("id"), &tag); err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if tag.IsSystem {
			respondError(c, services.BadRequest("系统标签不可改名"))
			return
		}
		var count int64
		if err := config.DB.Model(&models.Tag{}).
			Where("name = ? AND created_by_id = ? AND id != ?", *req.Name, uid, tag.ID).
			Count(&count).Error; err != nil {
			respondError(c, services.Internal("查询标签失败", err))
			return
		}
		if count > 0 {
			respondError(c, services.Conflict("同名标签已存在"))
			return
		}
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&tag).Updates(updates).Error; err != nil {
			respondError(c, services.Internal("更新标签失败", err))
			return
		}
	}
	c.JSON(http.StatusOK, tag)
}

// deleteTag 删除一个标签，系统标签和使用中的标签不可删除
func deleteTag(tx *gorm.DB, uid, id string) error {
	var tag models.Tag
	if err := ownedTag(tx, uid, id, &tag); err != nil {
		return err
	}
	if tag.IsSystem {
		return services.BadRequest("系统标签不可删除")
	}
	taskCount, noteCount, err := tagUsage(tx, tag.ID)
	if err != nil {
		return services.Internal("查询标签使用情况失败", err)
	}
	if taskCount > 0 || noteCount > 0 {
		return services.BadRequest("标签使用中，无法删除")
	}
	if err := tx.Delete(&tag).Error; err != nil {
		return services.Internal("删除标签失败", err)
	}
	return nil
}

// Delete 删除标签
func (tc *TagController) Delete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	if err := deleteTag(config.DB, uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "标签已删除"})
}

// BatchDelete 批量删除标签
func (tc *TagController) BatchDelete(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var req models.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := models.BatchOperationResponse{}
	for _, id := range req.Ids {
		if err := deleteTag(config.DB, uid, id); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, services.AsError(err).Message)
			continue
		}
		resp.Succeeded++
	}
	c.JSON(http.StatusOK, resp)
}

// Stats 每个标签在任务和笔记上的使用统计
func (tc *TagController) Stats(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var tags []models.Tag
	if err := config.DB.Where("created_by_id = ?", uid).
		Order("created_at").Find(&tags).Error; err != nil {
		respondError(c, services.Internal("查询标签列表失败", err))
		return
	}

	items := make([]models.TagStatsItem, 0, len(tags))
	for _, tag := range tags {
		taskCount, noteCount, err := tagUsage(config.DB, tag.ID)
		if err != nil {
			respondError(c, services.Internal("统计标签使用失败", err))
			return
		}
		items = append(items, models.TagStatsItem{
			Tag:       tag,
			TaskCount: taskCount,
			NoteCount: noteCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
