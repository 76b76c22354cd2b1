package middleware

import (
	"net/http"

	"DoneflowGo/models"
	"DoneflowGo/services"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware 管理员角色检查中间件，读取用户配置中的role字段
func AdminMiddleware(settings *services.SettingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("uid")
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
			return
		}

		if settings.Get(uid).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
			return
		}
		c.Next()
	}
}
