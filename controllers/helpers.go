package controllers

import (
	"errors"
	"net/http"

	"DoneflowGo/config"
	"DoneflowGo/services"

	"github.com/gin-gonic/gin"
)

// respondError 把业务错误映射为HTTP响应。
// 意外错误记录原因，对外只返回笼统消息。
func respondError(c *gin.Context, err error) {
	var serviceErr *services.Error
	if !errors.As(err, &serviceErr) {
		serviceErr = services.Internal("服务器内部错误", err)
	}

	switch serviceErr.Kind {
	case services.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": serviceErr.Message})
	case services.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": serviceErr.Message})
	case services.KindBadRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": serviceErr.Message})
	default:
		config.Logger.Errorw("请求处理失败",
			"error", serviceErr.Err,
			"path", c.Request.URL.Path,
			"requestID", c.GetString("requestID"),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
	}
}

// currentUID 取认证中间件写入的用户ID
func currentUID(c *gin.Context) (string, bool) {
	uid := c.GetString("uid")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未获取到用户ID"})
		return "", false
	}
	return uid, true
}
