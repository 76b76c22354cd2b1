package controllers

import (
	"net/http"

	"DoneflowGo/config"
	"DoneflowGo/models"
	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct{}

// CreateTestUser 创建测试用户并签发令牌。正式身份由外部认证服务落地。
func (ac *AuthController) CreateTestUser(c *gin.Context) {
	var req models.CreateTestUserRequest
	_ = c.ShouldBindJSON(&req)
	if req.Username == "" {
		req.Username = "test_user"
	}
	if req.Email == "" {
		req.Email = "test@example.com"
	}

	testUser := models.User{
		ID:         utils.GenerateID(),
		Username:   req.Username,
		Email:      req.Email,
		IsTestUser: true,
	}

	if err := config.DB.Create(&testUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建测试用户失败"})
		return
	}

	// 生成 JWT
	token, err := utils.GenerateToken(testUser.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "令牌生成失败"})
		return
	}

	config.Logger.Infow("创建测试用户",
		"userID", testUser.ID,
		"username", testUser.Username,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       testUser.ID,
			"username": testUser.Username,
			"email":    testUser.Email,
		},
	})
}
