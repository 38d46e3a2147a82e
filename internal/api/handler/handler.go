package handler

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/postservice/internal/service"
	"github.com/d60-Lab/postservice/internal/validation"
	"github.com/d60-Lab/postservice/pkg/logger"
	"github.com/d60-Lab/postservice/pkg/response"
)

// Handler HTTP 处理器集合
type Handler struct {
	postService service.PostService
}

func NewHandler(postService service.PostService) *Handler {
	return &Handler{postService: postService}
}

// failure 各接口在 404/500 时返回的固定文案
type failure struct {
	notFound string
	internal string
}

// fail 把服务层错误映射为响应：校验错误 400，未找到 404，其余 500
func (h *Handler) fail(c *gin.Context, err error, msgs failure) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Message)
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, msgs.notFound)
	default:
		if hub := sentry.GetHubFromContext(c.Request.Context()); hub != nil {
			hub.CaptureException(err)
		}
		logger.Warn("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		response.InternalError(c, err, msgs.internal)
	}
}
