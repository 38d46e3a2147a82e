package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/postservice/pkg/response"
)

type profile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Profiles 示例用户资料
// @Summary 示例用户资料
// @Tags 示例
// @Produce json
// @Success 200 {object} response.Response{data=profile}
// @Router /profiles [get]
func (h *Handler) Profiles(c *gin.Context) {
	response.Success(c, profile{Name: "john", Age: 20})
}

// Health 存活检查
// @Summary 存活检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
