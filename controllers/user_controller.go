package controllers

import (
	"errors"
	"net/http"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	settingsService *services.SettingsService
}

func NewUserController(settingsService *services.SettingsService) *UserController {
	return &UserController{settingsService: settingsService}
}

// GetUser 获取当前用户信息
func (uc *UserController) GetUser(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.Where("id = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, services.NotFound("用户不存在"))
			return
		}
		respondError(c, services.Internal("查询用户失败", err))
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetSettings 获取当前用户配置
func (uc *UserController) GetSettings(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, uc.settingsService.Get(uid))
}

// UpdateSettings 整体替换当前用户配置
func (uc *UserController) UpdateSettings(c *gin.Context) {
	uid, ok := currentUID(c)
	if !ok {
		return
	}

	var value models.SettingsValue
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := uc.settingsService.Update(uid, value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListUsers 管理员查看用户列表
func (uc *UserController) ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("created_at DESC").Limit(200).Find(&users).Error; err != nil {
		respondError(c, services.Internal("查询用户列表失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}
