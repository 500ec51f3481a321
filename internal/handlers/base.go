package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"forumcore/internal/models"
	"forumcore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorStatus 服务层错误 -> HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMaxDepthExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInsufficientKarma):
		return http.StatusForbidden
	case errors.Is(err, services.ErrDuplicateReport):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidVoteTarget),
		errors.Is(err, services.ErrInvalidContentType),
		errors.Is(err, services.ErrInvalidAwardType),
		errors.Is(err, services.ErrInvalidReportReason),
		errors.Is(err, services.ErrInvalidArgument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError 业务错误原样返回给调用方，内部错误只记日志
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// contentRef 读取 /:type/:id
func contentRef(c *gin.Context) models.ContentRef {
	return models.ContentRef{
		ID:   c.Param("id"),
		Type: models.ContentType(c.Param("type")),
	}
}

// queryInt 缺省或非法时返回 def
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
