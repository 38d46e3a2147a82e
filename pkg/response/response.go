package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 通用响应体；成功返回 data，失败返回 message
type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Data: data})
}

// JSON 直接输出 payload（列表接口保持扁平结构）
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{Message: msg})
}

func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Message: msg, Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Message: msg})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Message: "Too many requests"})
}

// InternalError 记录原始错误到 gin 上下文，对外只返回稳定文案
func InternalError(c *gin.Context, err error, msg string) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Message: msg})
}
