package handler

import (
	"errors"
	"net/http"

	"github.com/elliotrap/Widgeme/internal/service"
	"github.com/elliotrap/Widgeme/internal/store"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondTrackerError 将核心层错误映射到 HTTP 状态码
func respondTrackerError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrAccountUnavailable):
		respondError(c, http.StatusServiceUnavailable, "同步暂不可用")
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "目标记录不存在")
	case errors.Is(err, service.ErrHabitNameRequired):
		respondError(c, http.StatusBadRequest, "习惯名称不能为空")
	default:
		respondError(c, http.StatusInternalServerError, message)
	}
}
