package middleware

import (
	"net/http"
	"strings"

	"DoneflowGo/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证中间件。校验Authorization头中的JWT（兼容裸token和
// "Bearer <token>"两种形式），通过后把uid放进gin.Context供后续处理使用。
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未提供认证信息"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的认证信息"})
			return
		}

		c.Set("uid", claims.UserID)
		c.Next()
	}
}
